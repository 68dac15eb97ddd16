// internal/view/render.go
//
// Central view engine: template lookup, override chain, func-map injection,
// and an LRU of parsed *template.Template* sets.  Engine implements
// widget.ViewEngine, so widget views and whole pages share one loader.
//
// Lookup precedence (first hit wins):
//  1. sites/<host>/<name>.html
//  2. themes/<theme>/<name>.html
//  3. <name>.html
//
// A widget view named "Default" for ContactFormWidget therefore resolves
// from "widgets/ContactForm/Default" to, for example,
// themes/default/widgets/ContactForm/Default.html.
//
// All templates in the same directory are parsed as one set so sub-templates
// ({{ template "row" . }}) work out-of-the-box.  Parsing happens once per
// file through singleflight; each render clones the set and binds the
// request-scoped funcs (widget, widgetFields, ...) to the clone.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/widgets/internal/cache"
	"github.com/yanizio/widgets/internal/widget"
)

//
// cache definitions
//

// CachePolicy hints how the engine caches parsed sets.
type CachePolicy int

const (
	CacheDefault CachePolicy = iota // cache parsed sets in the LRU
	CacheSkip                       // reparse on every render (dev reload)
)

const ext = ".html"

// Engine loads templates from an fs.FS.
type Engine struct {
	fsys   fs.FS
	theme  string
	policy CachePolicy
	sets   *cache.LRU[string, *template.Template]
	group  singleflight.Group
	log    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTheme selects the themes/<name> override directory.
func WithTheme(name string) Option { return func(e *Engine) { e.theme = name } }

// WithCachePolicy sets the parse cache behaviour.
func WithCachePolicy(p CachePolicy) Option { return func(e *Engine) { e.policy = p } }

// WithCacheSize sets the LRU capacity (default 1024).
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sets = cache.New[string, *template.Template](n)
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

// New returns an Engine reading from fsys.
func New(fsys fs.FS, opts ...Option) *Engine {
	e := &Engine{fsys: fsys, theme: "default", log: zap.L()}
	for _, o := range opts {
		o(e)
	}
	if e.sets == nil {
		e.sets = cache.New[string, *template.Template](1024)
	}
	e.log = e.log.Named("view")
	return e
}

// Purge drops every parsed set; the next render re-reads the files.
func (e *Engine) Purge() { e.sets.Purge() }

// CacheStats reports the parsed-set cache counters.
func (e *Engine) CacheStats() cache.Stats { return e.sets.Stats() }

//
// widget.ViewEngine
//

// FindView searches the override chain for name.
func (e *Engine) FindView(vc *widget.ViewContext, name string) widget.ViewLookup {
	var host string
	if vc != nil && vc.Request != nil {
		host = stripPort(vc.Request.Host)
	}
	searched := e.candidates(host, name)
	for _, p := range searched {
		if e.exists(p) {
			return widget.ViewLookup{View: &tmplView{e: e, path: p}, Searched: searched}
		}
	}
	return widget.ViewLookup{Searched: searched}
}

// GetView resolves an explicit path.  "~/x" and "/x" are rooted at the
// filesystem; "x.html" is relative to the executing view's directory.
// Plain names are not paths and yield an empty lookup.
func (e *Engine) GetView(executingPath, viewPath string) widget.ViewLookup {
	var p string
	switch {
	case strings.HasPrefix(viewPath, "~/"):
		p = viewPath[2:]
	case strings.HasPrefix(viewPath, "/"):
		p = viewPath[1:]
	case strings.HasSuffix(viewPath, ext) && executingPath != "":
		p = path.Join(path.Dir(executingPath), viewPath)
	default:
		return widget.ViewLookup{}
	}
	p = withExt(path.Clean(p))
	if e.exists(p) {
		return widget.ViewLookup{View: &tmplView{e: e, path: p}, Searched: []string{p}}
	}
	return widget.ViewLookup{Searched: []string{p}}
}

//
// page rendering
//

// Render executes a page template for r and writes it to w.  The page gets
// its own ViewContext, so {{ widget "Name" }} works at top level.
func (e *Engine) Render(w http.ResponseWriter, r *http.Request, rt *widget.Runtime, name string, model any) error {
	var buf bytes.Buffer
	vc := rt.NewViewContext(&buf, r)
	vc.Data = vc.Data.WithModel(model)

	lk := e.FindView(vc, name)
	if lk.View == nil {
		return &widget.ViewNotFoundError{View: name, Searched: lk.Searched}
	}
	if err := lk.View.Render(r.Context(), vc); err != nil {
		return err
	}
	w.Header().Set("Content-Type", widget.DefaultContentType)
	_, err := buf.WriteTo(w)
	return err
}

// RenderToString executes a template and returns its HTML (e-mails, tests).
func (e *Engine) RenderToString(ctx context.Context, vc *widget.ViewContext, name string) (template.HTML, error) {
	lk := e.FindView(vc, name)
	if lk.View == nil {
		return "", &widget.ViewNotFoundError{View: name, Searched: lk.Searched}
	}
	var buf bytes.Buffer
	orig := vc.Writer
	vc.Writer = &buf
	defer func() { vc.Writer = orig }()
	if err := lk.View.Render(ctx, vc); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

//
// internal: view + load
//

type tmplView struct {
	e    *Engine
	path string
}

func (v *tmplView) Path() string { return v.path }

// Render clones the parsed set, binds the request funcs, and executes the
// file's template into vc.Writer.
func (v *tmplView) Render(ctx context.Context, vc *widget.ViewContext) error {
	set, err := v.e.load(v.path)
	if err != nil {
		return err
	}
	t, err := set.Clone()
	if err != nil {
		return err
	}
	t.Funcs(v.e.funcMap(ctx, vc))
	return t.ExecuteTemplate(vc.Writer, execName(t, path.Base(v.path)), vc.Page())
}

// load returns the parsed set containing p, parsing at most once per path
// across concurrent callers.
func (e *Engine) load(p string) (*template.Template, error) {
	if e.policy != CacheSkip {
		if t, ok := e.sets.Get(p); ok {
			return t, nil
		}
	}
	v, err, _ := e.group.Do(p, func() (any, error) {
		pattern := path.Join(path.Dir(p), "*"+ext)
		t, err := template.New(path.Base(p)).Funcs(placeholderFuncs()).ParseFS(e.fsys, pattern)
		if err != nil {
			return nil, err
		}
		if e.policy != CacheSkip {
			e.sets.Add(p, t)
		}
		e.log.Debug("parsed template set", zap.String("path", p), zap.String("pattern", pattern))
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*template.Template), nil
}

func (e *Engine) candidates(host, name string) []string {
	file := withExt(strings.TrimPrefix(path.Clean("/"+name), "/"))
	var out []string
	if host != "" && !strings.ContainsAny(host, `/\`) && host != "." && host != ".." {
		out = append(out, path.Join("sites", host, file))
	}
	if e.theme != "" {
		out = append(out, path.Join("themes", e.theme, file))
	}
	return append(out, file)
}

func (e *Engine) exists(p string) bool {
	if !fs.ValidPath(p) {
		return false
	}
	info, err := fs.Stat(e.fsys, p)
	return err == nil && !info.IsDir()
}

//
// helpers
//

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<name>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<name>" (root template defined via define).
func execName(t *template.Template, file string) string {
	if t.Lookup(file) != nil {
		return file
	}
	return strings.TrimSuffix(file, ext)
}

func withExt(p string) string {
	if path.Ext(p) == ext {
		return p
	}
	return p + ext
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.LastIndexByte(h, ':'); i != -1 && !strings.Contains(h[i:], "]") {
		return h[:i]
	}
	return h
}
