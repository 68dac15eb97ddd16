package widget

import "context"

// View is a resolved, renderable template.
type View interface {
	Path() string
	Render(ctx context.Context, vc *ViewContext) error
}

// ViewLookup is the outcome of a view search.  View is nil on a miss and
// Searched lists every location tried.
type ViewLookup struct {
	View     View
	Searched []string
}

// ViewEngine resolves views.  FindView searches by logical name (for
// example "widgets/Wizard/Question"); GetView resolves a path, where "~/"
// and "/" prefixes are root-relative.
type ViewEngine interface {
	FindView(vc *ViewContext, name string) ViewLookup
	GetView(executingPath, viewPath string) ViewLookup
}
