// internal/widget/form.go
//
// Hidden form fields that route a POST back to the widget that rendered
// the form.
//
// Context
// -------
// A widget view places {{ widgetFields }} (or {{ widgetFields "Confirmation" }})
// inside its <form>.  The output carries the widget id in __posttarget and
// the next state in __poststate.  When the runtime has a TokenSource an
// __antiforgery token is emitted as well.  Values are HTML-escaped the same
// way the forms renderer escapes its hidden inputs.

package widget

import (
	"html"
	"html/template"
	"strings"
)

// FormFields returns the hidden inputs for c.  An empty state falls back to
// the invocation's current state.
func FormFields(c *Context, state string) (template.HTML, error) {
	if c == nil {
		return "", nil
	}
	if state == "" {
		state = c.State
	}

	var b strings.Builder
	hidden(&b, PostTargetField, c.ID)
	hidden(&b, PostStateField, state)

	if rt := c.View.Runtime(); rt != nil && rt.tokens != nil {
		tok, err := rt.tokens.Generate()
		if err != nil {
			return "", err
		}
		hidden(&b, AntiforgeryField, tok)
	}
	return template.HTML(b.String()), nil
}

func hidden(b *strings.Builder, name, value string) {
	b.WriteString(`<input type="hidden" name="`)
	b.WriteString(html.EscapeString(name))
	b.WriteString(`" value="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`">`)
	b.WriteString("\n")
}
