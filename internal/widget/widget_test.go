package widget

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

//
// fake view engine
//

type mapView struct {
	path string
	src  string
}

func (v *mapView) Path() string { return v.path }

func (v *mapView) Render(_ context.Context, vc *ViewContext) error {
	t, err := template.New(v.path).Parse(v.src)
	if err != nil {
		return err
	}
	return t.Execute(vc.Writer, vc.Page())
}

// mapEngine resolves "<name>.html" keys.  "~/x" and "/x" are root paths;
// anything else passed to GetView misses without searching.
type mapEngine map[string]string

func (e mapEngine) find(p string) ViewLookup {
	if src, ok := e[p]; ok {
		return ViewLookup{View: &mapView{path: p, src: src}, Searched: []string{p}}
	}
	return ViewLookup{Searched: []string{p}}
}

func (e mapEngine) FindView(_ *ViewContext, name string) ViewLookup {
	return e.find(name + ".html")
}

func (e mapEngine) GetView(_, viewPath string) ViewLookup {
	switch {
	case strings.HasPrefix(viewPath, "~/"):
		return e.find(strings.TrimPrefix(viewPath, "~/") + ".html")
	case strings.HasPrefix(viewPath, "/"):
		return e.find(strings.TrimPrefix(viewPath, "/") + ".html")
	}
	return ViewLookup{}
}

//
// fake token source
//

type staticTokens string

func (s staticTokens) Generate() (string, error) { return string(s), nil }
func (s staticTokens) Verify(tok string) bool    { return tok != "" && tok == string(s) }

//
// fixture widgets
//

type EchoWidget struct{}

func (w *EchoWidget) WidgetParams(method string) []string { return []string{"msg"} }

func (w *EchoWidget) Invoke(msg string) string { return msg }

func (w *EchoWidget) InvokePost(msg string) template.HTML {
	return template.HTML("<em>" + msg + "</em>")
}

type DoublerWidget struct{}

func (w *DoublerWidget) WidgetParams(method string) []string { return []string{"", "n"} }

func (w *DoublerWidget) InvokeAsync(ctx context.Context, n int) (Result, error) {
	return Content(strconv.Itoa(n * 2)), nil
}

var errBoom = errors.New("boom")

type FailingWidget struct{}

func (w *FailingWidget) InvokeAsync(ctx context.Context) (string, error) { return "", errBoom }

var closed atomic.Int32

type PanickyWidget struct{}

func (w *PanickyWidget) Invoke() string { panic("kaboom") }
func (w *PanickyWidget) Close() error   { closed.Add(1); return nil }

var released atomic.Int32

type ReleasedWidget struct{}

func (w *ReleasedWidget) Invoke() (string, error) { return "", errBoom }
func (w *ReleasedWidget) Close() error            { released.Add(1); return nil }

type greeter struct{ prefix string }

type ServiceWidget struct {
	Greeting *greeter `widget:"service"`
	Ctx      *Context `widget:"context"`
}

func (w *ServiceWidget) Invoke() string { return w.Greeting.prefix + w.Ctx.ID }

type StepsWidget struct{}

func (w *StepsWidget) Invoke() string             { return "start" }
func (w *StepsWidget) InvokeQuestion() string     { return "question-any" }
func (w *StepsWidget) InvokeQuestionPost() string { return "question-post" }

type CardWidget struct{ Base }

func (w *CardWidget) Invoke() Result                { return w.View("", "Ada") }
func (w *CardWidget) InvokeSharedGet() Result       { return w.View("~/shared/Card", "Bo") }
func (w *CardWidget) InvokeMissingGet() Result      { return w.View("Nope", nil) }
func (w *CardWidget) InvokeEmptyGet() Result        { return nil }
func (w *CardWidget) InvokeJSONGet() *JSONResult    { return w.JSON(map[string]int{"n": 1}) }
func (w *CardWidget) InvokeEscapedGet() Result      { return w.Content("<b>&</b>") }
func (w *CardWidget) InvokePreEncodedGet() Result   { return EncodedContent("&lt;ok&gt;") }
func (w *CardWidget) InvokeNumberGet() (int, error) { return 7, nil }

type LeakyWidget struct{ Base }

func (w *LeakyWidget) Invoke() string {
	w.ViewData().Set("leak", "yes")
	w.ModelState().AddError("leak", "yes")
	return "leaked"
}

type signupModel struct {
	Email string `form:"email" validate:"required,email"`
	Age   int    `form:"age"`
	Tags  []string
}

type SignupWidget struct{ Base }

func (w *SignupWidget) WidgetParams(method string) []string { return []string{"signup"} }

func (w *SignupWidget) InvokePost(m signupModel) string {
	if !w.ModelState().Valid() {
		return "invalid:" + w.ModelState().First("Email")
	}
	return "ok:" + m.Email + ":" + strconv.Itoa(m.Age) + ":" + strings.Join(m.Tags, "|")
}

type RouteWidget struct{}

func (w *RouteWidget) WidgetParams(method string) []string { return []string{"id,route"} }

func (w *RouteWidget) Invoke(id int, ms *ModelState) string {
	return strconv.Itoa(id) + " " + strconv.FormatBool(ms.Valid())
}

//
// harness
//

var fixtures = []any{
	&EchoWidget{}, &DoublerWidget{}, &FailingWidget{}, &PanickyWidget{},
	&ServiceWidget{}, &StepsWidget{}, &CardWidget{}, &LeakyWidget{},
	&SignupWidget{}, &RouteWidget{}, &ReleasedWidget{},
}

var views = mapEngine{
	"widgets/Card/Default.html": "<p>{{ .Model }}</p>",
	"shared/Card.html":          "<div>{{ .Model }}</div>",
}

func newRuntime(t *testing.T, opts ...RuntimeOption) *Runtime {
	t.Helper()
	reg := NewRegistry()
	for _, f := range fixtures {
		_, err := reg.Register(f)
		require.NoError(t, err)
	}
	base := []RuntimeOption{WithRegistry(reg), WithEngine(views), WithLogger(zap.NewNop())}
	return New(append(base, opts...)...)
}

func getRequest() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) }

func postRequest(form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// invoke renders name against r and returns the markup.
func invoke(t *testing.T, rt *Runtime, r *http.Request, name string, opts ...InvokeOption) (string, error) {
	t.Helper()
	out, err := rt.NewViewContext(&bytes.Buffer{}, r).Helper().Invoke(context.Background(), name, opts...)
	return string(out), err
}
