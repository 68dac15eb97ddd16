// internal/widget/errors.go
//
// Typed failures raised by the widget pipeline.
//
// Context
// -------
// Discovery problems surface once, at registration.  Everything else
// surfaces per invocation and aborts the surrounding page render.  Callers
// match with errors.As / errors.Is; validation failures never show up here
// because the binder records them in ModelState instead.
//
// Errors returned by a widget's own Invoke method are NOT wrapped.  The
// invoker hands them back untouched so callers can compare identity.

package widget

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrAntiforgeryInvalid is returned when a widget POST carries a missing or
// forged antiforgery token.
var ErrAntiforgeryInvalid = errors.New("widget: antiforgery token invalid")

// RegistrationError wraps any problem found while describing a widget type.
type RegistrationError struct {
	Type reflect.Type
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("widget: cannot register %v: %v", e.Type, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// SignatureError reports an Invoke method whose shape the invoker cannot call.
type SignatureError struct {
	Method string
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("method %s: %s", e.Method, e.Reason)
}

// MethodConflictError reports two methods that parse to the same
// (state, verb) pair.
type MethodConflictError struct {
	First  string
	Second string
	State  string
	Verb   Verb
}

func (e *MethodConflictError) Error() string {
	return fmt.Sprintf("methods %s and %s both handle state %q, verb %s",
		e.First, e.Second, e.State, e.Verb)
}

// NotFoundError is returned when no registered widget matches a name or type.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("widget: cannot find widget %q", e.Name)
}

// AmbiguousWidgetError lists every descriptor that matched a lookup name.
type AmbiguousWidgetError struct {
	Name    string
	Matches []*Descriptor
}

func (e *AmbiguousWidgetError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "widget: the widget name %q matched multiple types:", e.Name)
	for _, d := range e.Matches {
		fmt.Fprintf(&b, "\nType: %v, Name: %s", d.Type, d.FullName)
	}
	return b.String()
}

// NoMethodError means dispatch found no method for the resolved verb and state.
type NoMethodError struct {
	Widget string
	Verb   Verb
	State  string
}

func (e *NoMethodError) Error() string {
	state := e.State
	if state == "" {
		state = "(default)"
	}
	return fmt.Sprintf("widget: %s has no Invoke method for verb %s and state %s",
		e.Widget, e.Verb, state)
}

// BindError is a fatal binding failure.  Conversion and validation problems
// are not fatal; they land in ModelState.
type BindError struct {
	Widget string
	Method string
	Param  string
	Err    error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("widget: %s.%s: cannot bind parameter %q: %v",
		e.Widget, e.Method, e.Param, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// ActivationError means the factory could not construct or prepare an instance.
type ActivationError struct {
	Type   reflect.Type
	Reason string
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("widget: cannot activate %v: %s", e.Type, e.Reason)
}

// UnsupportedResultError names the method that returned something the
// invoker cannot render.
type UnsupportedResultError struct {
	Widget string
	Method string
	Type   reflect.Type
}

func (e *UnsupportedResultError) Error() string {
	got := "nil"
	if e.Type != nil {
		got = e.Type.String()
	}
	return fmt.Sprintf("widget: %s.%s returned %s; widgets only support returning string, template.HTML, or a widget.Result",
		e.Widget, e.Method, got)
}

// ViewNotFoundError lists every location searched for a widget view.
type ViewNotFoundError struct {
	Widget   string
	View     string
	Searched []string
}

func (e *ViewNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "widget: view %q for %s was not found.  The following locations were searched:", e.View, e.Widget)
	for _, s := range e.Searched {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String()
}
