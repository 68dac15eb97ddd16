package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/yanizio/widgets/internal/cache"
	"github.com/yanizio/widgets/internal/widget"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.GetCounter().GetValue()
}

func event(short, state string, verb widget.Verb, err error) *widget.Event {
	return &widget.Event{
		Widget:  &widget.Context{Descriptor: &widget.Descriptor{ShortName: short}},
		Method:  &widget.MethodDescriptor{State: state},
		Verb:    verb,
		Elapsed: 3 * time.Millisecond,
		Err:     err,
	}
}

func TestListener_CountsOutcomes(t *testing.T) {
	l := Listener{}
	ctx := context.Background()

	ok := InvocationsTotal.WithLabelValues("MetricsProbe", "Post", "Confirmation", OutcomeOK)
	bad := InvocationsTotal.WithLabelValues("MetricsProbe", "Get", "", OutcomeError)
	okBefore, badBefore := counterValue(t, ok), counterValue(t, bad)

	l.AfterWidget(ctx, event("MetricsProbe", "Confirmation", widget.VerbPost, nil))
	l.AfterWidget(ctx, event("MetricsProbe", "", widget.VerbGet, errors.New("boom")))

	if got := counterValue(t, ok) - okBefore; got != 1 {
		t.Fatalf("ok delta = %v, want 1", got)
	}
	if got := counterValue(t, bad) - badBefore; got != 1 {
		t.Fatalf("error delta = %v, want 1", got)
	}
}

func TestListener_ViewNotFound(t *testing.T) {
	c := ViewNotFoundTotal.WithLabelValues("MetricsProbeView")
	before := counterValue(t, c)

	Listener{}.ViewNotFound(context.Background(), &widget.ViewEvent{
		Widget: &widget.Context{Descriptor: &widget.Descriptor{ShortName: "MetricsProbeView"}},
	})
	if got := counterValue(t, c) - before; got != 1 {
		t.Fatalf("delta = %v, want 1", got)
	}
}

func TestObserveCache(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c := cache.New[string, int](1)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Get("b")
	c.Get("a")
	if err := ObserveCache(reg, "probe", c.Stats); err != nil {
		t.Fatal(err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetLabel()[0].GetValue() != "probe" {
				t.Fatalf("%s: label = %v", mf.GetName(), m.GetLabel())
			}
			if g := m.GetGauge(); g != nil {
				got[mf.GetName()] = g.GetValue()
			} else {
				got[mf.GetName()] = m.GetCounter().GetValue()
			}
		}
	}
	want := map[string]float64{
		"widget_cache_entries":         1,
		"widget_cache_hits_total":      1,
		"widget_cache_misses_total":    1,
		"widget_cache_evictions_total": 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cache metrics (-want +got):\n%s", diff)
	}

	if err := ObserveCache(reg, "probe", c.Stats); err == nil {
		t.Fatal("duplicate registration accepted")
	}
}
