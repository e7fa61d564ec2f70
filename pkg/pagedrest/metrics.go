package pagedrest

import "github.com/prometheus/client_golang/prometheus"

// CacheCollector exposes CacheManager statistics as Prometheus counters.
type CacheCollector struct {
	manager       *CacheManager
	hits          *prometheus.Desc
	misses        *prometheus.Desc
	sets          *prometheus.Desc
	invalidations *prometheus.Desc
	errors        *prometheus.Desc
}

var _ prometheus.Collector = (*CacheCollector)(nil)

// NewCacheCollector creates a collector reading from manager.
func NewCacheCollector(manager *CacheManager, namespace string) *CacheCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", name), help, nil, nil)
	}

	return &CacheCollector{
		manager:       manager,
		hits:          desc("hits_total", "Total GET requests served from the response cache"),
		misses:        desc("misses_total", "Total GET requests not found in the response cache"),
		sets:          desc("sets_total", "Total responses written to the cache"),
		invalidations: desc("invalidations_total", "Total cache invalidations caused by mutations"),
		errors:        desc("errors_total", "Total cache backend errors"),
	}
}

// Describe implements prometheus.Collector.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.sets
	ch <- c.invalidations
	ch <- c.errors
}

// Collect implements prometheus.Collector.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.manager.GetStats()

	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.sets, prometheus.CounterValue, float64(stats.Sets))
	ch <- prometheus.MustNewConstMetric(c.invalidations, prometheus.CounterValue, float64(stats.Invalidations))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(stats.Errors))
}
