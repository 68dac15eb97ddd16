package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanizio/widgets/internal/cache"
)

// cacheCollector reads an LRU's counters at scrape time.
type cacheCollector struct {
	stats                         func() cache.Stats
	entries, hits, misses, evicts *prometheus.Desc
}

// ObserveCache exposes the counters returned by stats under cache=name.
func ObserveCache(reg prometheus.Registerer, name string, stats func() cache.Stats) error {
	labels := prometheus.Labels{"cache": name}
	return reg.Register(&cacheCollector{
		stats:   stats,
		entries: prometheus.NewDesc("widget_cache_entries", "Entries held by an in-process cache.", nil, labels),
		hits:    prometheus.NewDesc("widget_cache_hits_total", "Cache lookups that found an entry.", nil, labels),
		misses:  prometheus.NewDesc("widget_cache_misses_total", "Cache lookups that found nothing.", nil, labels),
		evicts:  prometheus.NewDesc("widget_cache_evictions_total", "Entries dropped to make room.", nil, labels),
	})
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.hits
	ch <- c.misses
	ch <- c.evicts
}

func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Len))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evicts, prometheus.CounterValue, float64(s.Evictions))
}
