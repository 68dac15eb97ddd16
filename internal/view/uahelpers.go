// internal/view/uahelpers.go
//
// User-Agent-related template helpers.  Values come from the RequestInfo
// that Resolver.Enrich stored on the request; without it every helper
// returns the zero value.
package view

import (
	"html/template"
	"net/http"

	"github.com/yanizio/widgets/internal/requestinfo"
)

// uaFuncMap returns helpers bound to r.  A nil r yields the parse-time set.
func uaFuncMap(r *http.Request) template.FuncMap {
	var ua requestinfo.UA
	var geo requestinfo.Geo
	if r != nil {
		if info := requestinfo.FromContext(r.Context()); info != nil {
			ua, geo = info.UA, info.Geo
		}
	}
	return template.FuncMap{
		"browser":        func() string { return ua.Browser },
		"browserVersion": func() string { return ua.Version },
		"os":             func() string { return ua.OS },
		"osVersion":      func() string { return ua.OSVersion },
		"device":         func() string { return ua.Device },
		"platform":       func() string { return ua.Platform },
		"isBot":          func() bool { return ua.IsBot },
		"country":        func() string { return geo.CountryISO },
	}
}
