package component

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/widgets/internal/database"
)

// Boot prepares every registered component and copies its routes onto r:
// migrations (when env.DB is set), then Init, then Routes.
func Boot(ctx context.Context, r chi.Router, env *Env) error {
	return boot(ctx, r, env, All())
}

func boot(ctx context.Context, r chi.Router, env *Env, comps []Component) error {
	log := env.Log
	if log == nil {
		log = zap.NewNop()
	}
	for _, c := range comps {
		if env.DB != nil {
			if err := database.Migrate(ctx, env.DB, c.Name(), c.Migrations()); err != nil {
				return err
			}
		}
		if in, ok := c.(Initializer); ok {
			if err := in.Init(env); err != nil {
				return fmt.Errorf("component %s: init: %w", c.Name(), err)
			}
		}
		n, err := mount(r, c.Routes(env))
		if err != nil {
			return fmt.Errorf("component %s: routes: %w", c.Name(), err)
		}
		log.Info("component mounted", zap.String("component", c.Name()), zap.Int("routes", n))
	}
	return nil
}

// mount copies every route of sub onto r.  Components all live at “/”,
// and chi refuses a second Mount on the same prefix.
func mount(r chi.Router, sub chi.Router) (int, error) {
	if sub == nil {
		return 0, nil
	}
	n := 0
	err := chi.Walk(sub, func(method, route string, h http.Handler, mws ...func(http.Handler) http.Handler) error {
		r.With(mws...).Method(method, route, h)
		n++
		return nil
	})
	return n, err
}
