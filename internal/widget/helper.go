package widget

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"reflect"
)

// Helper invokes widgets from inside a page or another widget.  Each call
// renders into its own buffer with its own view data copy and model state,
// so widgets on one page never see each other's writes.
type Helper struct {
	rt *Runtime
	vc *ViewContext
}

type invokeOptions struct {
	args  any
	id    string
	state string
}

// InvokeOption adjusts a single invocation.
type InvokeOption func(*invokeOptions)

// WithArgs passes caller arguments: a map[string]any, or a struct whose
// fields become arguments (tag `arg:"name"`, else the lower-camel field
// name).
func WithArgs(args any) InvokeOption { return func(o *invokeOptions) { o.args = args } }

// WithID sets the widget id matched against __posttarget.
func WithID(id string) InvokeOption { return func(o *invokeOptions) { o.id = id } }

// WithState sets the state used on GET.
func WithState(state string) InvokeOption { return func(o *invokeOptions) { o.state = state } }

// Invoke renders the widget registered under name.
func (h *Helper) Invoke(ctx context.Context, name string, opts ...InvokeOption) (template.HTML, error) {
	d, err := h.rt.selector.Select(name)
	if err != nil {
		return "", err
	}
	return h.invoke(ctx, d, opts)
}

// InvokeType renders the widget registered for proto's type.
func (h *Helper) InvokeType(ctx context.Context, proto any, opts ...InvokeOption) (template.HTML, error) {
	d, err := h.rt.selector.SelectType(reflect.TypeOf(proto))
	if err != nil {
		return "", err
	}
	return h.invoke(ctx, d, opts)
}

// Render is Invoke writing straight into w.
func (h *Helper) Render(ctx context.Context, w io.Writer, name string, opts ...InvokeOption) error {
	out, err := h.Invoke(ctx, name, opts...)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, string(out))
	return err
}

func (h *Helper) invoke(ctx context.Context, d *Descriptor, opts []InvokeOption) (template.HTML, error) {
	var o invokeOptions
	for _, fn := range opts {
		fn(&o)
	}
	args, err := argumentMap(o.args)
	if err != nil {
		return "", fmt.Errorf("widget %s: %w", d.FullName, err)
	}

	var buf bytes.Buffer
	vc := h.vc.child(&buf)
	c := &Context{
		Descriptor: d,
		Arguments:  args,
		ID:         o.id,
		State:      o.state,
		View:       vc,
		Encoder:    h.rt.encoder,
	}
	vc.Widget = c

	if err := h.rt.invoker.Invoke(ctx, c); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// argumentMap normalises caller arguments.  Struct field values are kept
// as is, so nested structs reach the method without conversion.
func argumentMap(args any) (map[string]any, error) {
	switch a := args.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return a, nil
	}
	v := reflect.ValueOf(args)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return map[string]any{}, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("arguments must be a map[string]any or a struct, got %T", args)
	}
	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("arg")
		if name == "-" {
			continue
		}
		if name == "" {
			name = lowerFirst(f.Name)
		}
		out[name] = v.Field(i).Interface()
	}
	return out, nil
}
