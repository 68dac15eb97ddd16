// internal/widget/registry.go
//
// Widget registry and the versioned descriptor collection.
//
// A widget lives under its component folder
// (`components/<comp>/widgets/<name>.go`) and registers itself from an
// init() func:
//
//	func init() { widget.Register(&ContactFormWidget{}) }
//
// Registration is discovery: the type is described, its Invoke methods are
// parsed, and any signature problem panics at boot instead of on the first
// request.
//
// Readers never take the registry lock on the hot path.  They work from a
// Collection snapshot that is built lazily and rebuilt (with a higher
// Version) only after another Register call.
package widget

import (
	"reflect"
	"sync"
)

// Collection is an immutable snapshot of every registered descriptor.
type Collection struct {
	Items   []*Descriptor
	Version int
}

// Registry holds registered widget descriptors.  The zero value is not
// usable; call NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	items   []*Descriptor
	byType  map[reflect.Type]*Descriptor
	snap    *Collection
	version int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: map[reflect.Type]*Descriptor{}}
}

// Default is the process-wide registry fed by init() registrations.
var Default = NewRegistry()

// Register describes proto and adds it to the Default registry.  It panics
// on discovery errors, so misconfigured widgets stop the process at boot.
func Register(proto any, opts ...Option) *Descriptor {
	d, err := Default.Register(proto, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Register describes proto and adds it.  Registering the same type twice
// returns the existing descriptor.
func (r *Registry) Register(proto any, opts ...Option) (*Descriptor, error) {
	d, err := Describe(proto, opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byType[d.Type]; ok {
		return prev, nil
	}
	r.items = append(r.items, d)
	r.byType[d.Type] = d
	r.snap = nil
	return d, nil
}

// Collection returns the current snapshot, building it when the registry
// changed since the last call.
func (r *Registry) Collection() *Collection {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()
	if snap != nil {
		return snap
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		items := make([]*Descriptor, len(r.items))
		copy(items, r.items)
		r.snap = &Collection{Items: items, Version: r.version}
		r.version++
	}
	return r.snap
}

// Lookup returns the descriptor registered for t (struct or pointer type).
func (r *Registry) Lookup(t reflect.Type) (*Descriptor, bool) {
	st, ok := structOf(t)
	if !ok {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byType[st]
	return d, ok
}
