package widget

import (
	"reflect"
	"strings"
	"sync/atomic"
)

// Selector resolves widget names against a registry's current collection.
// Names containing a dot match full names; all others match short names.
// Both comparisons are case-sensitive.
type Selector struct {
	reg   *Registry
	cache atomic.Pointer[selectorCache]
}

type selectorCache struct {
	version int
	byShort map[string][]*Descriptor
	byFull  map[string][]*Descriptor
}

// NewSelector binds a selector to reg.
func NewSelector(reg *Registry) *Selector {
	return &Selector{reg: reg}
}

// Select returns the single descriptor registered under name.
func (s *Selector) Select(name string) (*Descriptor, error) {
	c := s.current()
	idx := c.byShort
	if strings.Contains(name, ".") {
		idx = c.byFull
	}
	switch matches := idx[name]; len(matches) {
	case 0:
		return nil, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return nil, &AmbiguousWidgetError{Name: name, Matches: matches}
	}
}

// SelectType returns the descriptor of a registered type.
func (s *Selector) SelectType(t reflect.Type) (*Descriptor, error) {
	if d, ok := s.reg.Lookup(t); ok {
		return d, nil
	}
	name := "<nil>"
	if t != nil {
		name = t.String()
	}
	return nil, &NotFoundError{Name: name}
}

func (s *Selector) current() *selectorCache {
	coll := s.reg.Collection()
	if c := s.cache.Load(); c != nil && c.version == coll.Version {
		return c
	}
	c := &selectorCache{
		version: coll.Version,
		byShort: make(map[string][]*Descriptor, len(coll.Items)),
		byFull:  make(map[string][]*Descriptor, len(coll.Items)),
	}
	for _, d := range coll.Items {
		c.byShort[d.ShortName] = append(c.byShort[d.ShortName], d)
		c.byFull[d.FullName] = append(c.byFull[d.FullName], d)
	}
	s.cache.Store(c)
	return c
}
