package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Resolutions     *prometheus.CounterVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	OverrideReads   prometheus.Counter
	UpstreamLatency prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "platewise_verification_resolutions_total",
			Help: "Verification resolutions by final status and evidence source",
		}, []string{"status", "source"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "platewise_verification_cache_hits_total",
			Help: "Cache lookups answered from a fresh entry",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "platewise_verification_cache_misses_total",
			Help: "Cache lookups that required a new resolution",
		}),
		OverrideReads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "platewise_verification_override_reads_total",
			Help: "Resolutions short-circuited by the manual override",
		}),
		UpstreamLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "platewise_upstream_fetch_duration_seconds",
			Help:    "Latency of upstream profile and application fetches",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 8},
		}),
	}
}

func (m *Metrics) ObserveResolution(status, source string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(status, source).Inc()
}

func (m *Metrics) ObserveUpstreamLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamLatency.Observe(d.Seconds())
}

func (m *Metrics) IncrementCacheHits() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) IncrementCacheMisses() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) IncrementOverrideReads() {
	if m == nil {
		return
	}
	m.OverrideReads.Inc()
}
