// internal/view/funcs.go
//
// Template funcs.  Sets are parsed with placeholder versions so the names
// resolve; every render rebinds them to the current ViewContext.
//
//	{{ widget "ContactForm" }}
//	{{ widget "Greeting" (dict "name" .Model.Name) }}
//	{{ widgetAs "Wizard" "wizard-1" }}
//	{{ widgetState "Wizard" "wizard-1" "Question" }}
//	<form method="post">{{ widgetFields "Confirmation" }} ... </form>
//	{{ with fieldError "Email" }}<span class="err">{{ . }}</span>{{ end }}

package view

import (
	"context"
	"errors"
	"html/template"

	"github.com/yanizio/widgets/internal/widget"
)

var errUnbound = errors.New("view: template func used outside a render")

func placeholderFuncs() template.FuncMap {
	fm := template.FuncMap{
		"dict":         dict,
		"widget":       func(string, ...any) (template.HTML, error) { return "", errUnbound },
		"widgetAs":     func(string, string, ...any) (template.HTML, error) { return "", errUnbound },
		"widgetState":  func(string, string, string, ...any) (template.HTML, error) { return "", errUnbound },
		"widgetFields": func(...string) (template.HTML, error) { return "", errUnbound },
		"widgetID":     func() string { return "" },
		"fieldError":   func(string) string { return "" },
	}
	for k, v := range uaFuncMap(nil) {
		fm[k] = v
	}
	return fm
}

func (e *Engine) funcMap(ctx context.Context, vc *widget.ViewContext) template.FuncMap {
	h := vc.Helper()
	fm := template.FuncMap{
		"dict": dict,
		"widget": func(name string, args ...any) (template.HTML, error) {
			return h.Invoke(ctx, name, widget.WithArgs(firstArg(args)))
		},
		"widgetAs": func(name, id string, args ...any) (template.HTML, error) {
			return h.Invoke(ctx, name, widget.WithID(id), widget.WithArgs(firstArg(args)))
		},
		// state applies to GET only; a honoured POST reads __poststate.
		"widgetState": func(name, id, state string, args ...any) (template.HTML, error) {
			return h.Invoke(ctx, name, widget.WithID(id), widget.WithState(state), widget.WithArgs(firstArg(args)))
		},
		"widgetFields": func(state ...string) (template.HTML, error) {
			var s string
			if len(state) > 0 {
				s = state[0]
			}
			return widget.FormFields(vc.Widget, s)
		},
		"widgetID": func() string {
			if vc.Widget == nil {
				return ""
			}
			return vc.Widget.ID
		},
		"fieldError": func(key string) string { return vc.ModelState.First(key) },
	}
	for k, v := range uaFuncMap(vc.Request) {
		fm[k] = v
	}
	return fm
}

func firstArg(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
