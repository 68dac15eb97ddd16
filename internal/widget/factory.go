// internal/widget/factory.go
//
// Widget factory and activator.
//
// Context
// -------
// Create builds one instance per invocation and prepares it:
//
//   - fields tagged `widget:"service"` are filled from Services,
//   - fields tagged `widget:"context"` (type *widget.Context) receive the
//     invocation context,
//   - Contextualizer implementations (including anything embedding Base)
//     get Contextualize(ctx).
//
// The tag scan runs once per type; the resulting plan is cached in a
// sync.Map that only ever grows.  Release closes instances that implement
// io.Closer.

package widget

import (
	"fmt"
	"io"
	"reflect"
	"sync"
)

// Contextualizer receives the invocation context right after construction.
type Contextualizer interface {
	Contextualize(c *Context)
}

// Factory creates and releases widget instances.  Safe for concurrent use.
type Factory struct {
	plans sync.Map // reflect.Type → *injectPlan
}

type injectPlan struct {
	context  []int // field indexes receiving *Context
	services []int // field indexes resolved from Services
}

// NewFactory returns a Factory.
func NewFactory() *Factory { return &Factory{} }

// Create returns a prepared instance for c.Descriptor.  It never returns a
// nil instance with a nil error.
func (f *Factory) Create(c *Context) (any, error) {
	d := c.Descriptor
	if d.Type == nil || d.Type.Kind() != reflect.Struct {
		return nil, &ActivationError{Type: d.Type, Reason: "widget type must be a struct"}
	}

	var inst reflect.Value
	if d.ctor != nil {
		v, err := d.ctor(c.View.Services)
		if err != nil {
			return nil, err
		}
		inst = reflect.ValueOf(v)
		if !inst.IsValid() || inst.Type() != reflect.PointerTo(d.Type) || inst.IsNil() {
			return nil, &ActivationError{Type: d.Type, Reason: fmt.Sprintf("constructor returned %T, want *%s", v, d.Type.Name())}
		}
	} else {
		inst = reflect.New(d.Type)
	}

	plan, err := f.plan(d.Type)
	if err != nil {
		return nil, err
	}
	elem := inst.Elem()
	for _, i := range plan.context {
		elem.Field(i).Set(reflect.ValueOf(c))
	}
	for _, i := range plan.services {
		field := elem.Field(i)
		v, err := serviceValue(c.View.Services, field.Type())
		if err != nil {
			return nil, &ActivationError{Type: d.Type, Reason: fmt.Sprintf("field %s: %v", d.Type.Field(i).Name, err)}
		}
		field.Set(v)
	}

	w := inst.Interface()
	if cz, ok := w.(Contextualizer); ok {
		cz.Contextualize(c)
	}
	return w, nil
}

// Release disposes w when it implements io.Closer.
func (f *Factory) Release(_ *Context, w any) error {
	if cl, ok := w.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

func (f *Factory) plan(t reflect.Type) (*injectPlan, error) {
	if p, ok := f.plans.Load(t); ok {
		return p.(*injectPlan), nil
	}
	p := &injectPlan{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("widget")
		if tag == "" {
			continue
		}
		if !sf.IsExported() {
			return nil, &ActivationError{Type: t, Reason: fmt.Sprintf("tagged field %s must be exported", sf.Name)}
		}
		switch tag {
		case "context":
			if sf.Type != contextPtrType {
				return nil, &ActivationError{Type: t, Reason: fmt.Sprintf("field %s tagged context must be *widget.Context", sf.Name)}
			}
			p.context = append(p.context, i)
		case "service":
			p.services = append(p.services, i)
		default:
			return nil, &ActivationError{Type: t, Reason: fmt.Sprintf("field %s has unknown widget tag %q", sf.Name, tag)}
		}
	}
	actual, _ := f.plans.LoadOrStore(t, p)
	return actual.(*injectPlan), nil
}
