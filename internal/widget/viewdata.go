package widget

import "maps"

// ViewData carries the model and loose values handed to a view.  Each
// widget invocation works on its own copy, so writes never reach the
// parent page.
type ViewData struct {
	Model  any
	values map[string]any
}

// NewViewData returns ViewData holding model.
func NewViewData(model any) *ViewData {
	return &ViewData{Model: model, values: map[string]any{}}
}

// Get returns the value stored under key.
func (v *ViewData) Get(key string) any {
	if v == nil {
		return nil
	}
	return v.values[key]
}

// Set stores val under key.
func (v *ViewData) Set(key string, val any) {
	if v.values == nil {
		v.values = map[string]any{}
	}
	v.values[key] = val
}

// Values returns a copy of the loose values for template use.
func (v *ViewData) Values() map[string]any {
	if v == nil {
		return map[string]any{}
	}
	return maps.Clone(v.values)
}

// Clone copies v; the copy shares the model but not the value map.
func (v *ViewData) Clone() *ViewData {
	if v == nil {
		return NewViewData(nil)
	}
	out := &ViewData{Model: v.Model, values: maps.Clone(v.values)}
	if out.values == nil {
		out.values = map[string]any{}
	}
	return out
}

// WithModel is Clone with the model replaced.
func (v *ViewData) WithModel(model any) *ViewData {
	out := v.Clone()
	out.Model = model
	return out
}
