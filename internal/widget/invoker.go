// internal/widget/invoker.go
//
// Widget invoker.
//
// Workflow
// --------
//  1. Dispatch picks the method (and enforces antiforgery on an honoured
//     POST when a TokenSource is configured).
//  2. The factory creates the instance; release is deferred immediately.
//  3. The binder resolves arguments.
//  4. The method runs.  Async methods receive the request context.
//  5. The return value is coerced into a Result:
//     Result as is, string → ContentResult, template.HTML → HTMLResult.
//  6. The instance is released, listeners see AfterWidget, and the Result
//     is executed into the invocation's writer.
//
// Errors returned by the widget come back unchanged.  A panic inside the
// widget propagates with its original value after release has run.

package widget

import (
	"context"
	"fmt"
	"html/template"
	"reflect"
	"sort"
	"time"

	"go.uber.org/zap"
)

// TokenSource issues and checks antiforgery tokens.
type TokenSource interface {
	Generate() (string, error)
	Verify(token string) bool
}

// Invoker runs one widget invocation end to end.
type Invoker struct {
	factory   *Factory
	binder    *Binder
	tokens    TokenSource
	listeners listeners
	log       *zap.Logger
}

// Invoke dispatches, runs, and renders c.
func (inv *Invoker) Invoke(ctx context.Context, c *Context) error {
	log := inv.log.With(
		zap.String("widget_name", c.Descriptor.FullName),
		zap.String("widget_id", c.ID),
	)

	m, verb, err := Dispatch(c)
	if err != nil {
		return err
	}
	c.Method = m

	if verb == VerbPost && inv.tokens != nil {
		if !inv.tokens.Verify(c.Request().PostFormValue(AntiforgeryField)) {
			log.Info("antiforgery token validation failed")
			return ErrAntiforgeryInvalid
		}
	}

	res, ev, err := inv.invokeCore(ctx, c, m, verb, log)
	if ev != nil {
		inv.listeners.after(ctx, ev)
	}
	if err != nil {
		return err
	}
	return res.Execute(ctx, c)
}

// invokeCore creates, binds, calls, coerces, and releases.  ev is non-nil
// once the method has been called.
func (inv *Invoker) invokeCore(ctx context.Context, c *Context, m *MethodDescriptor, verb Verb, log *zap.Logger) (res Result, ev *Event, err error) {
	inst, err := inv.factory.Create(c)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if rerr := inv.factory.Release(c, inst); rerr != nil {
			log.Warn("widget release failed", zap.Error(rerr))
			if err == nil {
				res, err = nil, rerr
				if ev != nil {
					ev.Err = rerr
				}
			}
		}
	}()

	args, err := inv.binder.Bind(ctx, c, m)
	if err != nil {
		return nil, nil, err
	}

	ev = &Event{Widget: c, Method: m, Verb: verb, Args: argMap(m, args)}
	log.Debug("executing widget", zap.String("method", m.Name), zap.Strings("args", formatArgs(ev.Args)))
	inv.listeners.before(ctx, ev)

	start := time.Now()
	res, err = inv.call(ctx, c, inst, m, args)
	ev.Elapsed, ev.Result, ev.Err = time.Since(start), res, err
	if err != nil {
		return nil, ev, err
	}

	log.Debug("executed widget",
		zap.String("method", m.Name),
		zap.Float64("elapsed_ms", float64(ev.Elapsed.Microseconds())/1000),
		zap.String("result", fmt.Sprintf("%T", res)),
	)
	return res, ev, nil
}

func (inv *Invoker) call(ctx context.Context, c *Context, inst any, m *MethodDescriptor, args []reflect.Value) (Result, error) {
	if m.Async {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, reflect.ValueOf(inst))
	in = append(in, args...)

	out := m.fn.Call(in)
	if m.returnsErr {
		if e := out[1].Interface(); e != nil {
			return nil, e.(error)
		}
	}
	return coerce(out[0], c.Descriptor, m)
}

// coerce maps a method's return value onto a Result.
func coerce(v reflect.Value, d *Descriptor, m *MethodDescriptor) (Result, error) {
	if isNil(v) {
		return nil, &UnsupportedResultError{Widget: d.FullName, Method: m.Name}
	}
	switch x := v.Interface().(type) {
	case Result:
		return x, nil
	case template.HTML:
		return HTML(x), nil
	case string:
		return Content(x), nil
	}
	return nil, &UnsupportedResultError{Widget: d.FullName, Method: m.Name, Type: v.Type()}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return !v.IsValid()
}

func argMap(m *MethodDescriptor, args []reflect.Value) map[string]any {
	out := make(map[string]any, len(args))
	for i, p := range m.Params {
		if args[i].IsValid() && args[i].CanInterface() {
			out[p.Name] = args[i].Interface()
		}
	}
	return out
}

// formatArgs lists bound parameters as name:type for debug logs, skipping
// ambient values.  Values are left out; they may carry submitted form data.
func formatArgs(args map[string]any) []string {
	out := make([]string, 0, len(args))
	for k, v := range args {
		switch v.(type) {
		case context.Context, *Context, *ModelState, *ViewData:
			continue
		}
		if reflect.TypeOf(v) == requestType {
			continue
		}
		out = append(out, fmt.Sprintf("%s:%T", k, v))
	}
	sort.Strings(out)
	return out
}
