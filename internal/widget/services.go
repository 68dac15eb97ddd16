package widget

import (
	"html/template"
	"reflect"
	"sync"
)

// Services resolves dependencies by type.  It is the seam to whatever
// container the host application uses.
type Services interface {
	Resolve(t reflect.Type) (any, bool)
}

// ServiceMap is a minimal Services keyed by exact type.  Safe for
// concurrent use.
type ServiceMap struct {
	mu sync.RWMutex
	m  map[reflect.Type]any
}

// NewServiceMap returns an empty ServiceMap.
func NewServiceMap() *ServiceMap {
	return &ServiceMap{m: map[reflect.Type]any{}}
}

// Provide registers v under its dynamic type.
func (s *ServiceMap) Provide(v any) *ServiceMap {
	return s.ProvideAs(reflect.TypeOf(v), v)
}

// ProvideAs registers v under t, typically an interface type obtained with
// reflect.TypeFor.
func (s *ServiceMap) ProvideAs(t reflect.Type, v any) *ServiceMap {
	s.mu.Lock()
	s.m[t] = v
	s.mu.Unlock()
	return s
}

// Resolve implements Services.
func (s *ServiceMap) Resolve(t reflect.Type) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[t]
	return v, ok
}

// HTMLEncoder escapes text for inclusion in HTML.
type HTMLEncoder interface {
	Encode(s string) string
}

type templateEncoder struct{}

func (templateEncoder) Encode(s string) string { return template.HTMLEscapeString(s) }

// DefaultEncoder escapes with html/template rules.
var DefaultEncoder HTMLEncoder = templateEncoder{}
