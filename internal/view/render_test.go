package view

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/yanizio/widgets/internal/widget"
)

//
// fixtures
//

type GreetingWidget struct{ widget.Base }

func (w *GreetingWidget) WidgetParams(string) []string { return []string{"name"} }

func (w *GreetingWidget) Invoke(name string) widget.Result {
	w.ViewData().Set("punct", "!")
	return w.View("", struct{ Name string }{name})
}

type BareWidget struct{}

func (BareWidget) Invoke() widget.Result { return widget.NewView("", nil) }

type FormWidget struct{ widget.Base }

func (w *FormWidget) Invoke() widget.Result { return w.View("Form", nil) }

type StagedWidget struct{}

func (StagedWidget) Invoke() string         { return "start" }
func (StagedWidget) InvokeQuestion() string { return "question" }

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"pages/home.html":                       {Data: []byte(`<main>{{ widget "Greeting" (dict "name" "Ada") }}{{ with index .Data "punct" }}leak{{ end }}</main>`)},
		"widgets/Greeting/Default.html":         {Data: []byte(`<p>Hello {{ .Model.Name }}{{ index .Data "punct" }}</p>{{ template "sig.html" . }}`)},
		"widgets/Greeting/sig.html":             {Data: []byte(`<small>greeter</small>`)},
		"themes/default/widgets/Form/Form.html": {Data: []byte(`<form method="post">{{ widgetFields "Confirmation" }}</form>`)},
		"shared/note.html":                      {Data: []byte(`note`)},
		"pages/steps.html":                      {Data: []byte(`{{ widget "Staged" }}|{{ widgetState "Staged" "s1" "Question" }}`)},
		"sites/example.com/pages/home.html":     {Data: []byte(`site override`)},
	}
}

func newRuntime(t *testing.T, e *Engine) *widget.Runtime {
	t.Helper()
	reg := widget.NewRegistry()
	for _, p := range []any{&GreetingWidget{}, &BareWidget{}, &FormWidget{}, &StagedWidget{}} {
		if _, err := reg.Register(p); err != nil {
			t.Fatalf("register %T: %v", p, err)
		}
	}
	return widget.New(widget.WithRegistry(reg), widget.WithEngine(e))
}

//
// lookup
//

func TestFindView_OverrideChain(t *testing.T) {
	e := New(testFS())
	rt := newRuntime(t, e)

	r := httptest.NewRequest(http.MethodGet, "http://example.com:8080/", nil)
	lk := e.FindView(rt.NewViewContext(&bytes.Buffer{}, r), "pages/home")
	if lk.View == nil || lk.View.Path() != "sites/example.com/pages/home.html" {
		t.Fatalf("site override not chosen: %+v", lk)
	}

	r = httptest.NewRequest(http.MethodGet, "http://other.test/", nil)
	lk = e.FindView(rt.NewViewContext(&bytes.Buffer{}, r), "pages/home")
	if lk.View == nil || lk.View.Path() != "pages/home.html" {
		t.Fatalf("root fallback not chosen: %+v", lk)
	}
	want := []string{"sites/other.test/pages/home.html", "themes/default/pages/home.html", "pages/home.html"}
	if strings.Join(lk.Searched, ",") != strings.Join(want, ",") {
		t.Fatalf("searched = %v, want %v", lk.Searched, want)
	}
}

func TestGetView_Paths(t *testing.T) {
	e := New(testFS())

	if lk := e.GetView("", "~/shared/note"); lk.View == nil || lk.View.Path() != "shared/note.html" {
		t.Fatalf("rooted path: %+v", lk)
	}
	if lk := e.GetView("widgets/Greeting/Default.html", "sig.html"); lk.View == nil || lk.View.Path() != "widgets/Greeting/sig.html" {
		t.Fatalf("relative path: %+v", lk)
	}
	if lk := e.GetView("widgets/Greeting/Default.html", "Default"); lk.View != nil || len(lk.Searched) != 0 {
		t.Fatalf("plain name should not resolve as a path: %+v", lk)
	}
	if lk := e.GetView("", "/missing/x"); lk.View != nil || len(lk.Searched) != 1 {
		t.Fatalf("missing path: %+v", lk)
	}
}

//
// rendering
//

func TestRender_PageWithWidget(t *testing.T) {
	e := New(testFS())
	rt := newRuntime(t, e)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://other.test/", nil)
	if err := e.Render(rec, r, rt, "pages/home", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	got := rec.Body.String()
	want := `<main><p>Hello Ada!</p><small>greeter</small></main>`
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestRender_WidgetFields(t *testing.T) {
	e := New(testFS())
	rt := newRuntime(t, e)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	vc := rt.NewViewContext(&bytes.Buffer{}, r)
	out, err := vc.Helper().Invoke(context.Background(), "Form", widget.WithID("f1"))
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	for _, frag := range []string{
		`name="__posttarget" value="f1"`,
		`name="__poststate" value="Confirmation"`,
	} {
		if !strings.Contains(string(out), frag) {
			t.Fatalf("missing %s in %s", frag, out)
		}
	}
}

func TestRender_WidgetState(t *testing.T) {
	e := New(testFS())
	rt := newRuntime(t, e)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/?state=Question", nil)
	if err := e.Render(rec, r, rt, "pages/steps", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := rec.Body.String(); got != "start|question" {
		t.Fatalf("got %q, want %q", got, "start|question")
	}
}

func TestRender_ViewNotFound(t *testing.T) {
	e := New(testFS())
	rt := newRuntime(t, e)

	vc := rt.NewViewContext(&bytes.Buffer{}, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := vc.Helper().Invoke(context.Background(), "Bare")

	var nf *widget.ViewNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("want ViewNotFoundError, got %v", err)
	}
	if !strings.Contains(strings.Join(nf.Searched, ","), "themes/default/widgets/Bare/Default.html") {
		t.Fatalf("searched = %v", nf.Searched)
	}
}

func TestLoad_CachesParsedSet(t *testing.T) {
	fsys := testFS()
	e := New(fsys)
	first, err := e.load("shared/note.html")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := e.load("shared/note.html")
	if first != second {
		t.Fatal("expected cached set")
	}
	if st := e.CacheStats(); st.Len != 1 || st.Hits != 1 {
		t.Fatalf("stats = %+v", st)
	}

	e.Purge()
	third, _ := e.load("shared/note.html")
	if third == first {
		t.Fatal("Purge should force a reparse")
	}

	dev := New(fsys, WithCachePolicy(CacheSkip))
	a, _ := dev.load("shared/note.html")
	b, _ := dev.load("shared/note.html")
	if a == b {
		t.Fatal("CacheSkip should reparse")
	}
}

func TestDict(t *testing.T) {
	m := dict("a", 1, "b", "two", "dangling")
	if len(m) != 2 || m["a"] != 1 || m["b"] != "two" {
		t.Fatalf("dict = %v", m)
	}
}
