// internal/widget/context.go
//
// Invocation and view contexts.
//
// Context
// -------
// A ViewContext is everything a view needs to render: the request, the
// writer, view data, model state, and services.  Every widget invocation
// gets a child ViewContext with its own writer, its own copy of the view
// data, and a fresh ModelState.  The request and services are shared.
//
// A Context wraps that child with the invocation inputs (descriptor,
// caller arguments, widget id, and state).  It is owned by a single
// invocation and never shared between goroutines.

package widget

import (
	"io"
	"net/http"
)

// ViewContext is the rendering scope of a page or a widget.
type ViewContext struct {
	Request    *http.Request
	Writer     io.Writer
	Data       *ViewData
	ModelState *ModelState
	Services   Services

	// Widget is the invocation currently rendering, nil at page level.
	Widget *Context

	// ExecutingPath is the view path being rendered, "" before any view.
	ExecutingPath string

	rt *Runtime
}

// Runtime returns the runtime that created vc.
func (vc *ViewContext) Runtime() *Runtime { return vc.rt }

// Helper returns a widget helper rendering inside vc.
func (vc *ViewContext) Helper() *Helper { return &Helper{rt: vc.rt, vc: vc} }

// child copies vc for a nested scope writing to w.
func (vc *ViewContext) child(w io.Writer) *ViewContext {
	c := *vc
	c.Writer = w
	c.Data = vc.Data.Clone()
	c.ModelState = NewModelState()
	return &c
}

// withView copies vc for rendering a view at path with data.
func (vc *ViewContext) withView(path string, data *ViewData) *ViewContext {
	c := *vc
	c.ExecutingPath = path
	if data != nil {
		c.Data = data
	}
	return &c
}

// Page is the value views execute against.
type Page struct {
	Model      any
	Data       map[string]any
	ModelState *ModelState
	Widget     *Context
	Request    *http.Request
}

// Page builds the template data for vc.
func (vc *ViewContext) Page() *Page {
	var model any
	if vc.Data != nil {
		model = vc.Data.Model
	}
	return &Page{
		Model:      model,
		Data:       vc.Data.Values(),
		ModelState: vc.ModelState,
		Widget:     vc.Widget,
		Request:    vc.Request,
	}
}

// Context describes one widget invocation.
type Context struct {
	Descriptor *Descriptor
	Method     *MethodDescriptor // set once dispatch succeeds
	Arguments  map[string]any
	ID         string
	State      string
	View       *ViewContext
	Encoder    HTMLEncoder
}

// Writer is shorthand for the invocation's output writer.
func (c *Context) Writer() io.Writer { return c.View.Writer }

// Request is shorthand for the shared request.
func (c *Context) Request() *http.Request { return c.View.Request }

// ModelState is shorthand for the invocation's model state.
func (c *Context) ModelState() *ModelState { return c.View.ModelState }

// ViewData is shorthand for the invocation's view data.
func (c *Context) ViewData() *ViewData { return c.View.Data }
