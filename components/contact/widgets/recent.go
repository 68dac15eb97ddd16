// components/contact/widgets/recent.go
package widgets

import (
	"context"

	"github.com/yanizio/widgets/components/contact"
	"github.com/yanizio/widgets/internal/widget"
)

const defaultRecent = 5

// RecentMessagesWidget lists the latest contact messages.  The limit comes
// from the caller ({{ widget "RecentMessages" (dict "limit" 3) }}) or the
// ?limit= query value.
type RecentMessagesWidget struct {
	widget.Base
	Store contact.Store `widget:"service"`
}

func (w *RecentMessagesWidget) WidgetParams(string) []string {
	return []string{"", "limit,query"}
}

func (w *RecentMessagesWidget) InvokeAsync(ctx context.Context, limit int) (widget.Result, error) {
	if limit < 1 {
		limit = defaultRecent
	}
	msgs, err := w.Store.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return w.View("", msgs), nil
}

func init() { widget.Register(&RecentMessagesWidget{}) }
