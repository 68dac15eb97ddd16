// internal/widget/runtime.go
//
// Runtime wires the pipeline together: registry → selector → invoker
// (factory + binder) → results → view engine.  One Runtime is built at boot
// and shared by every request; per-request state lives in ViewContext.
//
// Usage
// -----
//
//	rt := widget.New(
//		widget.WithEngine(view.New(os.DirFS(root))),
//		widget.WithServices(svcs),
//		widget.WithLogger(zap.L()),
//	)
//	vc := rt.NewViewContext(w, r)
//	html, err := vc.Helper().Invoke(r.Context(), "ContactForm", widget.WithID("contact"))

package widget

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Runtime is safe for concurrent use once built.
type Runtime struct {
	registry  *Registry
	selector  *Selector
	invoker   *Invoker
	engine    ViewEngine
	services  Services
	encoder   HTMLEncoder
	tokens    TokenSource
	json      JSONOptions
	listeners listeners
	validate  *validator.Validate
	log       *zap.Logger
}

// RuntimeOption configures New.
type RuntimeOption func(*Runtime)

// WithRegistry replaces the Default registry.
func WithRegistry(r *Registry) RuntimeOption { return func(rt *Runtime) { rt.registry = r } }

// WithEngine sets the view engine used by ViewResult.
func WithEngine(e ViewEngine) RuntimeOption { return func(rt *Runtime) { rt.engine = e } }

// WithServices sets the dependency resolver.
func WithServices(s Services) RuntimeOption { return func(rt *Runtime) { rt.services = s } }

// WithEncoder replaces the HTML encoder.
func WithEncoder(e HTMLEncoder) RuntimeOption { return func(rt *Runtime) { rt.encoder = e } }

// WithTokens enables antiforgery checks on widget POSTs.
func WithTokens(t TokenSource) RuntimeOption { return func(rt *Runtime) { rt.tokens = t } }

// WithJSON sets the default JSONResult options.
func WithJSON(o JSONOptions) RuntimeOption { return func(rt *Runtime) { rt.json = o } }

// WithListener adds a diagnostics listener.
func WithListener(l Listener) RuntimeOption {
	return func(rt *Runtime) { rt.listeners = append(rt.listeners, l) }
}

// WithValidator shares a validator instance with the binder.
func WithValidator(v *validator.Validate) RuntimeOption { return func(rt *Runtime) { rt.validate = v } }

// WithLogger sets the logger; the default is zap.L() at build time.
func WithLogger(l *zap.Logger) RuntimeOption { return func(rt *Runtime) { rt.log = l } }

// New builds a Runtime.
func New(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		registry: Default,
		encoder:  DefaultEncoder,
		json:     DefaultJSONOptions,
		log:      zap.L(),
	}
	for _, o := range opts {
		o(rt)
	}
	rt.log = rt.log.Named("widget")
	rt.selector = NewSelector(rt.registry)
	rt.invoker = &Invoker{
		factory:   NewFactory(),
		binder:    NewBinder(rt.validate, rt.log),
		tokens:    rt.tokens,
		listeners: rt.listeners,
		log:       rt.log,
	}
	return rt
}

// Registry returns the registry the runtime reads.
func (rt *Runtime) Registry() *Registry { return rt.registry }

// NewViewContext returns a page-level view context writing to w.
func (rt *Runtime) NewViewContext(w io.Writer, r *http.Request) *ViewContext {
	return &ViewContext{
		Request:    r,
		Writer:     w,
		Data:       NewViewData(nil),
		ModelState: NewModelState(),
		Services:   rt.services,
		rt:         rt,
	}
}
