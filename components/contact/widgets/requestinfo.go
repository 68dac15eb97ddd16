// components/contact/widgets/requestinfo.go
//
// Request-info widget – shows the request’s UA, IP, and Geo details as an
// HTML snippet, or as JSON in the Data state.
package widgets

import (
	"net/http"

	"github.com/yanizio/widgets/internal/requestinfo"
	"github.com/yanizio/widgets/internal/widget"
)

// RequestInfoWidget renders requestinfo.FromContext.
type RequestInfoWidget struct{ widget.Base }

// Invoke renders the Default view.  Without the Enrich middleware it
// renders nothing.
func (w *RequestInfoWidget) Invoke(r *http.Request) widget.Result {
	ri := requestinfo.FromContext(r.Context())
	if ri == nil {
		return w.Content("")
	}
	return w.View("", ri)
}

// InvokeDataGet returns the same details as JSON.
func (w *RequestInfoWidget) InvokeDataGet(r *http.Request) widget.Result {
	return w.JSON(requestinfo.FromContext(r.Context()))
}

func init() { widget.Register(&RequestInfoWidget{}) }
