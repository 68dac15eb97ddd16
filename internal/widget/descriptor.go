package widget

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// Constructor builds a widget instance.  It must return a pointer to the
// registered struct type.
type Constructor func(Services) (any, error)

// Descriptor is the immutable description of one widget type.
type Descriptor struct {
	ID        string
	FullName  string
	ShortName string
	Type      reflect.Type // struct type, never a pointer
	Methods   []*MethodDescriptor

	ctor Constructor
}

// Option customises registration.
type Option func(*Descriptor)

// WithConstructor replaces reflect.New as the way instances are built.
func WithConstructor(fn Constructor) Option {
	return func(d *Descriptor) { d.ctor = fn }
}

// Describe inspects proto (a value or pointer of the widget type) and
// returns its descriptor.  All discovery errors come back wrapped in a
// *RegistrationError.
func Describe(proto any, opts ...Option) (*Descriptor, error) {
	t := reflect.TypeOf(proto)
	fail := func(err error) (*Descriptor, error) {
		return nil, &RegistrationError{Type: t, Err: err}
	}
	if !IsWidget(t) {
		return fail(errors.New("type is not a widget: want an exported, non-generic struct named *Widget or implementing Namer"))
	}
	st, _ := structOf(t)

	full, short := FullName(st), ShortName(st)
	if full == "" || short == "" || strings.ContainsAny(short, ". \t") {
		return fail(fmt.Errorf("invalid widget name %q: short name %q must be non-empty without dots or spaces", full, short))
	}

	methods, err := describeMethods(st)
	if err != nil {
		return fail(err)
	}
	if len(methods) == 0 {
		return fail(fmt.Errorf("no Invoke methods found on %v", st))
	}

	d := &Descriptor{
		ID:        uuid.NewString(),
		FullName:  full,
		ShortName: short,
		Type:      st,
		Methods:   methods,
	}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// MethodTable summarises the discovered methods, sorted by name.
func (d *Descriptor) MethodTable() []MethodInfo {
	out := make([]MethodInfo, len(d.Methods))
	for i, m := range d.Methods {
		out[i] = MethodInfo{Name: m.Name, State: m.State, Verb: m.Verb, Async: m.Async, Rank: m.Rank}
	}
	return out
}

func (d *Descriptor) String() string { return d.FullName }
