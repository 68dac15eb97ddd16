// internal/widget/result.go
//
// Renderable widget results.
//
// Context
// -------
// An Invoke method returns a Result (or a string / template.HTML that the
// invoker wraps).  A Result renders itself into the invocation's writer
// without touching the widget instance, which has already been released by
// the time Execute runs.
//
//   - ContentResult – plain text, HTML-encoded on write.
//   - HTMLResult    – trusted markup, written verbatim.
//   - JSONResult    – value streamed as JSON.
//   - ViewResult    – a template found by convention under
//     widgets/<ShortName>/<Name|Default>.
//
// Notes
// -----
//   • An explicit view name is first tried as a direct path ("~/x" or "/x"
//     are root-relative); the conventional location is the fallback.  A miss
//     reports every location tried.

package widget

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"html/template"
	"io"
	"path"
	"time"

	"go.uber.org/zap"
)

// Result renders a widget's output.
type Result interface {
	Execute(ctx context.Context, c *Context) error
}

//
// Content
//

// ContentResult writes HTML-encoded text.
type ContentResult struct {
	Content string

	encoded    string
	preEncoded bool
}

// Content returns a result that encodes s on write.
func Content(s string) *ContentResult { return &ContentResult{Content: s} }

// EncodedContent wraps text that is already HTML-encoded.  Content holds
// the decoded form; the encoded form is written unchanged.
func EncodedContent(encoded string) *ContentResult {
	return &ContentResult{Content: html.UnescapeString(encoded), encoded: encoded, preEncoded: true}
}

func (r *ContentResult) Execute(_ context.Context, c *Context) error {
	out := r.encoded
	if !r.preEncoded {
		enc := c.Encoder
		if enc == nil {
			enc = DefaultEncoder
		}
		out = enc.Encode(r.Content)
	}
	_, err := io.WriteString(c.Writer(), out)
	return err
}

//
// HTML
//

// HTMLResult writes trusted markup as is.
type HTMLResult struct {
	HTML template.HTML
}

// HTML returns a result that writes h verbatim.
func HTML(h template.HTML) *HTMLResult { return &HTMLResult{HTML: h} }

func (r *HTMLResult) Execute(_ context.Context, c *Context) error {
	_, err := io.WriteString(c.Writer(), string(r.HTML))
	return err
}

//
// JSON
//

// JSONOptions controls JSON output.
type JSONOptions struct {
	Prefix     string
	Indent     string
	EscapeHTML bool
}

// DefaultJSONOptions escapes HTML and writes compact output.
var DefaultJSONOptions = JSONOptions{EscapeHTML: true}

// JSONResult streams Value as JSON.
type JSONResult struct {
	Value   any
	Options *JSONOptions // nil uses the runtime defaults
}

// JSON returns a result that serialises v.
func JSON(v any) *JSONResult { return &JSONResult{Value: v} }

func (r *JSONResult) Execute(_ context.Context, c *Context) error {
	opts := DefaultJSONOptions
	if rt := c.View.Runtime(); rt != nil {
		opts = rt.json
	}
	if r.Options != nil {
		opts = *r.Options
	}
	enc := json.NewEncoder(c.Writer())
	enc.SetIndent(opts.Prefix, opts.Indent)
	enc.SetEscapeHTML(opts.EscapeHTML)
	return enc.Encode(r.Value)
}

//
// View
//

const (
	viewPathFormat  = "widgets"
	defaultViewName = "Default"
)

// ViewResult renders a template.
type ViewResult struct {
	Name   string
	Model  any        // replaces the model of Data when non-nil
	Data   *ViewData  // nil uses the invocation's view data
	Engine ViewEngine // nil uses the runtime engine
}

// NewView returns a result rendering name with model.
func NewView(name string, model any) *ViewResult {
	return &ViewResult{Name: name, Model: model}
}

func (r *ViewResult) Execute(ctx context.Context, c *Context) error {
	rt := c.View.Runtime()
	engine := r.Engine
	if engine == nil && rt != nil {
		engine = rt.engine
	}
	if engine == nil {
		return errors.New("widget: no view engine configured")
	}

	var (
		found    View
		searched []string
	)
	if r.Name != "" {
		l := engine.GetView(c.View.ExecutingPath, r.Name)
		found, searched = l.View, l.Searched
	}
	if found == nil {
		name := r.Name
		if name == "" {
			name = defaultViewName
		}
		l := engine.FindView(c.View, path.Join(viewPathFormat, c.Descriptor.ShortName, name))
		found = l.View
		searched = append(searched, l.Searched...)
	}

	var ls listeners
	if rt != nil {
		ls = rt.listeners
	}
	if found == nil {
		ev := &ViewEvent{Widget: c, View: r.Name, Searched: searched}
		ls.view(func(l ViewListener) { l.ViewNotFound(ctx, ev) })
		if rt != nil {
			rt.log.Error("widget view not found",
				zap.String("widget", c.Descriptor.FullName),
				zap.String("view", r.Name),
				zap.Strings("searched", searched))
		}
		return &ViewNotFoundError{Widget: c.Descriptor.FullName, View: r.Name, Searched: searched}
	}

	data := r.Data
	if data == nil {
		data = c.ViewData()
	}
	if r.Model != nil {
		data = data.WithModel(r.Model)
	}
	child := c.View.withView(found.Path(), data)
	if rt != nil {
		rt.log.Debug("widget view found", zap.String("view", found.Path()))
	}

	ev := &ViewEvent{Widget: c, View: found.Path()}
	ls.view(func(l ViewListener) { l.BeforeView(ctx, ev) })
	start := time.Now()
	err := found.Render(ctx, child)
	ev.Elapsed, ev.Err = time.Since(start), err
	ls.view(func(l ViewListener) { l.AfterView(ctx, ev) })
	return err
}
