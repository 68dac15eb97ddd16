// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  Widgets register with the
// widget package from their own init() functions; a component supplies
// the services those widgets need and the pages that host them.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Initializer is optional.  Boot calls Init(env) after migrations and
// before any route is mounted.
type Initializer interface {
	Init(*Env) error
}

// Component contract.
//
// Migrations() may return nil.  Statements are applied once each, by
// index, so new ones are only ever appended.  Routes() mounts pages and
// API endpoints together:
//
//	r := chi.NewRouter()
//	r.Get("/contact", showContact)
//	r.Route("/api", func(api chi.Router) { ... })
//	return r
type Component interface {
	Name() string
	Routes(*Env) chi.Router
	Migrations() []string
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  A second
// component with the same name panics.
func Register(c Component) {
	mu.Lock()
	defer mu.Unlock()
	if prev, dup := registry[c.Name()]; dup && prev != c {
		panic(fmt.Sprintf("component: %q registered twice", c.Name()))
	}
	registry[c.Name()] = c
}

// All returns every registered component sorted by name, so boot order is
// stable across restarts.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func unregister(name string) {
	mu.Lock()
	delete(registry, name)
	mu.Unlock()
}
