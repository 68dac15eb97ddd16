// Package metrics holds Prometheus instruments for widget invocations.  The
// invocation collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
// Listener feeds them from the widget runtime's diagnostics hooks;
// ObserveCache adds per-cache gauges.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanizio/widgets/internal/widget"
)

var (
	InvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_invocations_total",
			Help: "Cumulative number of widget invocations by outcome.",
		}, []string{"widget", "verb", "state", "outcome"})

	DurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "widget_duration_seconds",
			Help:    "Time spent inside widget Invoke methods.",
			Buckets: prometheus.DefBuckets,
		}, []string{"widget"})

	ViewNotFoundTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_view_not_found_total",
			Help: "Cumulative number of widget views that could not be located.",
		}, []string{"widget"})
)

func init() {
	prometheus.MustRegister(
		InvocationsTotal,
		DurationSeconds,
		ViewNotFoundTotal,
	)
}

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Listener records invocation metrics.  Pass it to widget.WithListener.
type Listener struct{}

var (
	_ widget.Listener     = Listener{}
	_ widget.ViewListener = Listener{}
)

func (Listener) BeforeWidget(context.Context, *widget.Event) {}

func (Listener) AfterWidget(_ context.Context, ev *widget.Event) {
	name := ev.Widget.Descriptor.ShortName
	outcome := OutcomeOK
	if ev.Err != nil {
		outcome = OutcomeError
	}
	InvocationsTotal.WithLabelValues(name, ev.Verb.String(), ev.Method.State, outcome).Inc()
	DurationSeconds.WithLabelValues(name).Observe(ev.Elapsed.Seconds())
}

func (Listener) BeforeView(context.Context, *widget.ViewEvent) {}

func (Listener) AfterView(context.Context, *widget.ViewEvent) {}

func (Listener) ViewNotFound(_ context.Context, ev *widget.ViewEvent) {
	ViewNotFoundTotal.WithLabelValues(ev.Widget.Descriptor.ShortName).Inc()
}
