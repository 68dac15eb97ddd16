// components/contact/contact.go
//
// Contact Component – pages and endpoints around the contact widgets.
//
// Routes
// ------
//   - GET|POST /contact           page embedding ContactForm and RecentMessages
//   - GET|POST /contact-direct    ContactForm rendered as the whole response
//   - GET|POST /wizard            page embedding the three-step Wizard
//   - GET      /api/request-info  RequestInfo widget, JSON state
//
// The widgets live in components/contact/widgets and register themselves;
// this package only provides their Store and mounts the routes.
package contact

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/widgets/internal/component"
	"github.com/yanizio/widgets/internal/widget"
)

// FormID is the widget id the contact page and /contact-direct share, so a
// form rendered by one posts back correctly to either.
const FormID = "contact"

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp implements component.Component.
type Comp struct{}

func (c *Comp) Name() string { return "contact" }

func (c *Comp) Migrations() []string {
	return []string{`CREATE TABLE IF NOT EXISTS contact_message (
	    id         BIGINT AUTO_INCREMENT PRIMARY KEY,
	    name       VARCHAR(100)  NOT NULL,
	    email      VARCHAR(254)  NOT NULL,
	    topic      VARCHAR(16)   NOT NULL DEFAULT '',
	    body       TEXT          NOT NULL,
	    subscribe  BOOLEAN       NOT NULL DEFAULT FALSE,
	    created_at DATETIME(6)   NOT NULL,
	    INDEX idx_contact_created (created_at)
	)`}
}

// Init provides the Store service to widgets.
func (c *Comp) Init(env *component.Env) error {
	var store Store
	if env.DB != nil {
		store = NewSQLStore(env.DB)
	} else {
		env.Log.Warn("no database configured, contact messages are kept in memory")
		store = NewMemoryStore()
	}
	env.Services.ProvideAs(reflect.TypeFor[Store](), store)
	return nil
}

func (c *Comp) Routes(env *component.Env) chi.Router {
	r := chi.NewRouter()

	page := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			if err := env.Views.Render(w, req, env.Runtime, name, nil); err != nil {
				env.Log.Error("page render failed", zap.String("page", name), zap.Error(err))
				http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
			}
		}
	}

	r.Get("/contact", page("pages/contact"))
	r.Post("/contact", page("pages/contact"))
	r.Get("/wizard", page("pages/wizard"))
	r.Post("/wizard", page("pages/wizard"))

	direct := env.Runtime.Handler(&widget.Response{Name: "ContactForm", ID: FormID})
	r.Method(http.MethodGet, "/contact-direct", direct)
	r.Method(http.MethodPost, "/contact-direct", direct)

	r.Method(http.MethodGet, "/api/request-info", env.Runtime.Handler(&widget.Response{
		Name:        "RequestInfo",
		State:       "Data",
		ContentType: "application/json",
	}))

	return r
}

// statusFor maps widget failures onto HTTP statuses.
func statusFor(err error) int {
	var nf *widget.NotFoundError
	switch {
	case errors.Is(err, widget.ErrAntiforgeryInvalid):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Register component at package init.
func init() {
	component.Register(&Comp{})
}
