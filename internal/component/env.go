// internal/component/env.go
package component

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/widgets/internal/config"
	"github.com/yanizio/widgets/internal/view"
	"github.com/yanizio/widgets/internal/widget"
)

// Env exposes process-wide resources to Components during Init and Routes.
type Env struct {
	DB       *sqlx.DB // nil when no database is configured
	Config   *config.Config
	Services *widget.ServiceMap
	Runtime  *widget.Runtime
	Views    *view.Engine
	Log      *zap.Logger
}
