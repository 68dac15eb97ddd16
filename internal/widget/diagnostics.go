package widget

import (
	"context"
	"time"
)

// Event describes one widget invocation to listeners.  Result, Elapsed,
// and Err are only set for AfterWidget.
type Event struct {
	Widget  *Context
	Method  *MethodDescriptor
	Verb    Verb
	Args    map[string]any
	Result  Result
	Elapsed time.Duration
	Err     error
}

// Listener observes invocations.  Callbacks run synchronously on the
// request goroutine and must not block.
type Listener interface {
	BeforeWidget(ctx context.Context, ev *Event)
	AfterWidget(ctx context.Context, ev *Event)
}

// ViewEvent describes one widget view render.
type ViewEvent struct {
	Widget   *Context
	View     string
	Searched []string
	Elapsed  time.Duration
	Err      error
}

// ViewListener is an optional extension of Listener for view renders.
type ViewListener interface {
	BeforeView(ctx context.Context, ev *ViewEvent)
	AfterView(ctx context.Context, ev *ViewEvent)
	ViewNotFound(ctx context.Context, ev *ViewEvent)
}

type listeners []Listener

func (ls listeners) before(ctx context.Context, ev *Event) {
	for _, l := range ls {
		l.BeforeWidget(ctx, ev)
	}
}

func (ls listeners) after(ctx context.Context, ev *Event) {
	for _, l := range ls {
		l.AfterWidget(ctx, ev)
	}
}

func (ls listeners) view(fn func(ViewListener)) {
	for _, l := range ls {
		if vl, ok := l.(ViewListener); ok {
			fn(vl)
		}
	}
}
