package widgets

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanizio/widgets/components/contact"
	"github.com/yanizio/widgets/internal/antiforgery"
	"github.com/yanizio/widgets/internal/component"
	"github.com/yanizio/widgets/internal/requestinfo"
	"github.com/yanizio/widgets/internal/view"
	"github.com/yanizio/widgets/internal/widget"
)

type harness struct {
	handler http.Handler
	rt      *widget.Runtime
	store   contact.Store
	signer  *antiforgery.Signer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	signer, err := antiforgery.NewSigner(bytes.Repeat([]byte("s"), antiforgery.MinKeyBytes), 0)
	require.NoError(t, err)

	engine := view.New(os.DirFS("../../../web"), view.WithLogger(zap.NewNop()))
	services := widget.NewServiceMap().Provide(zap.NewNop())
	rt := widget.New(
		widget.WithEngine(engine),
		widget.WithServices(services),
		widget.WithTokens(signer),
		widget.WithLogger(zap.NewNop()),
	)
	env := &component.Env{Services: services, Runtime: rt, Views: engine, Log: zap.NewNop()}

	comp := &contact.Comp{}
	require.NoError(t, comp.Init(env))
	store, ok := services.Resolve(reflect.TypeFor[contact.Store]())
	require.True(t, ok)

	return &harness{handler: comp.Routes(env), rt: rt, store: store.(contact.Store), signer: signer}
}

func (h *harness) token(t *testing.T) string {
	t.Helper()
	tok, err := h.signer.Generate()
	require.NoError(t, err)
	return tok
}

func (h *harness) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, r)
	return rec
}

func postForm(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

//
// contact form
//

func TestContactDirect_GetRendersForm(t *testing.T) {
	h := newHarness(t)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/contact-direct", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.Contains(t, body, `name="__posttarget" value="contact"`)
	require.Contains(t, body, `name="__antiforgery"`)
	require.Contains(t, body, `<option value="support">support</option>`)
}

func TestContactDirect_PostSavesMessage(t *testing.T) {
	h := newHarness(t)
	rec := h.do(postForm("/contact-direct", url.Values{
		widget.PostTargetField:  {"contact"},
		widget.AntiforgeryField: {h.token(t)},
		"name":                  {"Ada"},
		"email":                 {"ada@example.com"},
		"topic":                 {"support"},
		"message":               {"The analytical engine is humming."},
		"subscribe":             {"on"},
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Thanks Ada, message #1 received.")

	msgs, err := h.store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.True(t, msgs[0].Subscribe)
	require.Equal(t, "support", msgs[0].Topic)
}

func TestContactDirect_PostInvalidRerendersWithErrors(t *testing.T) {
	h := newHarness(t)
	rec := h.do(postForm("/contact-direct", url.Values{
		widget.PostTargetField:  {"contact"},
		widget.AntiforgeryField: {h.token(t)},
		"name":                  {"Ada"},
		"email":                 {"not-an-address"},
		"message":               {"short"},
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Please enter a valid e-mail address.")
	require.Contains(t, body, "Must be at least 10 characters.")
	require.Contains(t, body, `value="Ada"`)

	msgs, _ := h.store.Recent(context.Background(), 5)
	require.Empty(t, msgs)
}

func TestContactDirect_PostWithoutTokenIsRejected(t *testing.T) {
	h := newHarness(t)
	rec := h.do(postForm("/contact-direct", url.Values{
		widget.PostTargetField: {"contact"},
		"name":                 {"Mallory"},
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactPage_PostForOtherWidgetIsAGet(t *testing.T) {
	h := newHarness(t)
	rec := h.do(postForm("/contact", url.Values{
		widget.PostTargetField: {"someone-else"},
		"name":                 {"Ada"},
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<h1>Contact us</h1>")
	require.Contains(t, body, `<input name="name" value="">`)
	require.Contains(t, body, "No messages yet.")
}

//
// wizard
//

func TestWizard_Steps(t *testing.T) {
	h := newHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/wizard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `name="__poststate" value="Confirmation"`)

	rec = h.do(postForm("/wizard", url.Values{
		widget.PostTargetField:  {"wizard"},
		widget.PostStateField:   {"Confirmation"},
		widget.AntiforgeryField: {h.token(t)},
		"answer":                {"  "},
	}))
	require.Contains(t, rec.Body.String(), "Please enter an answer.")

	rec = h.do(postForm("/wizard", url.Values{
		widget.PostTargetField:  {"wizard"},
		widget.PostStateField:   {"Confirmation"},
		widget.AntiforgeryField: {h.token(t)},
		"answer":                {"Blue"},
	}))
	body := rec.Body.String()
	require.Contains(t, body, "You answered <strong>Blue</strong>.")
	require.Contains(t, body, `name="__poststate" value="Answer"`)

	rec = h.do(postForm("/wizard", url.Values{
		widget.PostTargetField:  {"wizard"},
		widget.PostStateField:   {"Answer"},
		widget.AntiforgeryField: {h.token(t)},
		"answer":                {"Blue"},
		"confirm":               {"on"},
	}))
	require.Contains(t, rec.Body.String(), "Your answer: Blue")
}

//
// recent messages + request info
//

func TestRecentMessages_CallerLimit(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"a", "b", "c"} {
		_, err := h.store.Save(context.Background(), &contact.Message{Name: name, Topic: "other", Body: "hello there"})
		require.NoError(t, err)
	}

	vc := h.rt.NewViewContext(&bytes.Buffer{}, httptest.NewRequest(http.MethodGet, "/", nil))
	out, err := vc.Helper().Invoke(context.Background(), "RecentMessages", widget.WithArgs(map[string]any{"limit": 2}))
	require.NoError(t, err)
	require.Contains(t, string(out), "<li>c (other): hello there</li>")
	require.Contains(t, string(out), "<li>b (other): hello there</li>")
	require.NotContains(t, string(out), "<li>a (other)")
}

func TestRequestInfo_JSONState(t *testing.T) {
	h := newHarness(t)
	r := httptest.NewRequest(http.MethodGet, "/api/request-info", nil)
	r = r.WithContext(requestinfo.NewContext(r.Context(), &requestinfo.RequestInfo{
		UA: requestinfo.UA{Browser: "Chrome", Device: "Desktop"},
	}))
	rec := h.do(r)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	var got requestinfo.RequestInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Chrome", got.UA.Browser)
}
