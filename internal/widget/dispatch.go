// internal/widget/dispatch.go
//
// Method selection.
//
// Several widgets may share one page, so a POST is only meant for the
// widget whose id matches the submitted __posttarget field.  Every other
// widget on the page treats the request as a GET and re-renders its
// default view.  A widget rendered without an id only accepts a POST that
// carries no target at all.
//
// On an honoured POST the state comes from __poststate.  On a GET it comes
// from the caller's WithState option; the request query is never read.

package widget

import (
	"net/http"
	"strings"
)

// Hidden form fields written by FormFields and read by Dispatch.
const (
	PostTargetField  = "__posttarget"
	PostStateField   = "__poststate"
	AntiforgeryField = "__antiforgery"
)

// resolveVerb applies the POST-target rule.
func resolveVerb(c *Context) Verb {
	r := c.Request()
	if r == nil || r.Method != http.MethodPost {
		return VerbGet
	}
	if !strings.EqualFold(c.ID, r.PostFormValue(PostTargetField)) {
		return VerbGet
	}
	return VerbPost
}

// resolveState returns the state token for verb.
func resolveState(c *Context, verb Verb) string {
	if verb == VerbPost {
		return c.Request().PostFormValue(PostStateField)
	}
	return c.State
}

// Dispatch picks the method to run for c.  Methods declared for the exact
// verb outrank methods declared for any verb.
func Dispatch(c *Context) (*MethodDescriptor, Verb, error) {
	verb := resolveVerb(c)
	state := resolveState(c, verb)

	var best *MethodDescriptor
	for _, m := range c.Descriptor.Methods {
		if m.State != state || (m.Verb != verb && m.Verb != VerbAny) {
			continue
		}
		if best == nil || m.Rank > best.Rank {
			best = m
		}
	}
	if best == nil {
		return nil, verb, &NoMethodError{Widget: c.Descriptor.FullName, Verb: verb, State: state}
	}
	return best, verb, nil
}
