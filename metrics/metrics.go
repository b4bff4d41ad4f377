// Package metrics exposes ridgedb's runtime counters as Prometheus
// collectors. cockroachdb/pebble already pulls prometheus/client_golang in
// indirectly (pebble's own metrics.go uses it); this package promotes it
// to a direct, exercised dependency rather than hand-rolling counters the
// teacher's own dependency tree already supplies.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridgedb_cache_hits_total",
		Help: "Page cache hits, labeled by table.",
	}, []string{"table"})

	CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridgedb_cache_misses_total",
		Help: "Page cache misses, labeled by table.",
	}, []string{"table"})

	CacheEvictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridgedb_cache_evictions_total",
		Help: "Page cache LRU evictions, labeled by table.",
	}, []string{"table"})

	PagesCached = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ridgedb_pages_cached",
		Help: "Pages currently resident in a table's cache.",
	}, []string{"table"})

	PagesAllocated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridgedb_pages_allocated_total",
		Help: "Fresh pages allocated when the tail page of a table filled up.",
	}, []string{"table"})

	PageReads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridgedb_page_reads_total",
		Help: "Pages read from a table's data file.",
	}, []string{"table"})

	PageWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridgedb_page_writes_total",
		Help: "Pages written to a table's data file.",
	}, []string{"table"})

	InsertDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ridgedb_insert_duration_seconds",
		Help:    "Engine.Insert latency, labeled by table.",
		Buckets: prometheus.DefBuckets,
	}, []string{"table"})

	SelectDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ridgedb_select_duration_seconds",
		Help:    "Engine.Select latency, labeled by table.",
		Buckets: prometheus.DefBuckets,
	}, []string{"table"})
)

// Registry is the collector registry cmd/ridgedb serves over /metrics. A
// package-local registry (rather than prometheus.DefaultRegisterer) keeps
// ridgedb safe to import from a host process that runs its own collectors.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		CacheHits, CacheMisses, CacheEvictions, PagesCached,
		PagesAllocated, PageReads, PageWrites,
		InsertDuration, SelectDuration,
	)
}
