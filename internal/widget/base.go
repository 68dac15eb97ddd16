package widget

import (
	"html/template"
	"net/http"
)

// Base is embedded by widgets that want shortcuts to their invocation
// context.  The factory fills it in through Contextualize.
//
//	type WizardWidget struct{ widget.Base }
//
//	func (w *WizardWidget) InvokeGet() widget.Result {
//		return w.View("Question", nil)
//	}
type Base struct {
	ctx *Context
}

// Contextualize implements Contextualizer.
func (b *Base) Contextualize(c *Context) { b.ctx = c }

// WidgetContext returns the current invocation.
func (b *Base) WidgetContext() *Context { return b.ctx }

// Request returns the shared request.
func (b *Base) Request() *http.Request { return b.ctx.Request() }

// ModelState returns the invocation's model state.
func (b *Base) ModelState() *ModelState { return b.ctx.ModelState() }

// ViewData returns the invocation's view data.
func (b *Base) ViewData() *ViewData { return b.ctx.ViewData() }

// Content returns a ContentResult.
func (b *Base) Content(s string) *ContentResult { return Content(s) }

// HTML returns an HTMLResult.
func (b *Base) HTML(h template.HTML) *HTMLResult { return HTML(h) }

// JSON returns a JSONResult using the runtime defaults.
func (b *Base) JSON(v any) *JSONResult { return JSON(v) }

// View returns a ViewResult for name ("" means Default).  A non-nil model
// replaces the model in a copy of the invocation's view data.
func (b *Base) View(name string, model any) *ViewResult {
	return &ViewResult{Name: name, Model: model, Data: b.ViewData()}
}
