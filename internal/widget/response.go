// internal/widget/response.go
//
// Rendering a widget as a whole HTTP response.
//
// Context
// -------
// A handler can answer with a single widget instead of a page, for example
// to serve a contact form directly or to refresh one widget over XHR:
//
//	r.Get("/contact-direct", rt.Handler(&widget.Response{Name: "ContactForm"}))
//
// The body is rendered into a buffer first so a failing widget never
// leaves a half-written 200 behind.
//
// Content type precedence: Response.ContentType, then a Content-Type
// already set on the writer, then text/html.  A charset of utf-8 is added
// when the chosen type has none.

package widget

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// DefaultContentType is used when neither the response nor the writer
// declares one.
const DefaultContentType = "text/html; charset=utf-8"

// Response describes a widget rendered as the entire response.  Set Name
// or Type; Type wins when both are set.
type Response struct {
	Name        string
	Type        any // prototype value of a registered widget type
	Args        any
	ID          string
	State       string
	ContentType string
	StatusCode  int
	Data        *ViewData
}

// Respond renders resp to w.
func (rt *Runtime) Respond(w http.ResponseWriter, r *http.Request, resp *Response) error {
	rt.log.Info("executing widget response", zap.String("widget", resp.target()))

	var buf bytes.Buffer
	vc := rt.NewViewContext(&buf, r)
	if resp.Data != nil {
		vc.Data = resp.Data
	}

	opts := []InvokeOption{WithArgs(resp.Args), WithID(resp.ID), WithState(resp.State)}
	h := vc.Helper()
	var (
		out template.HTML
		err error
	)
	if resp.Type != nil {
		out, err = h.InvokeType(r.Context(), resp.Type, opts...)
	} else {
		out, err = h.Invoke(r.Context(), resp.Name, opts...)
	}
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", resolveContentType(resp.ContentType, w.Header().Get("Content-Type")))
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err = io.WriteString(w, string(out))
	return err
}

// Handler adapts resp to an http.Handler.  Failures are logged and answered
// with a plain 400 for a rejected antiforgery token and 500 otherwise.
func (rt *Runtime) Handler(resp *Response) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := rt.Respond(w, r, resp); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrAntiforgeryInvalid) {
				status = http.StatusBadRequest
			}
			rt.log.Error("widget response failed", zap.String("widget", resp.target()), zap.Error(err))
			http.Error(w, http.StatusText(status), status)
		}
	})
}

func (resp *Response) target() string {
	if resp.Type != nil {
		return FullName(reflect.TypeOf(resp.Type))
	}
	return resp.Name
}

func resolveContentType(explicit, existing string) string {
	ct := explicit
	if ct == "" {
		ct = existing
	}
	if ct == "" {
		return DefaultContentType
	}
	mt, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	if _, ok := params["charset"]; ok {
		return ct
	}
	if params == nil {
		params = map[string]string{}
	}
	params["charset"] = "utf-8"
	if out := mime.FormatMediaType(mt, params); out != "" {
		return out
	}
	return strings.TrimSuffix(ct, ";") + "; charset=utf-8"
}
