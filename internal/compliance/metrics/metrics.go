package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance data-access layer.
// Tracks cache effectiveness, store round trips and batch sizes.
type Metrics struct {
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	StoreQueries  *prometheus.CounterVec
	BatchSize     *prometheus.HistogramVec
	BatchFailures prometheus.Counter
	FetchDuration prometheus.Histogram
}

// New creates a new Metrics instance with all compliance metrics registered.
func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "slf_compliance_cache_hits_total",
			Help: "Cache hits by entry kind",
		}, []string{"kind"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "slf_compliance_cache_misses_total",
			Help: "Cache misses by entry kind",
		}, []string{"kind"}),
		StoreQueries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "slf_compliance_store_queries_total",
			Help: "Store round trips by operation",
		}, []string{"operation"}),
		BatchSize: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slf_compliance_batch_size",
			Help:    "Number of elements per batch call",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"operation"}),
		BatchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slf_compliance_batch_update_failures_total",
			Help: "Individual response updates that failed inside a batch",
		}),
		FetchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "slf_compliance_batch_fetch_duration_seconds",
			Help:    "Duration of BatchFetchInspectionsWithChecklists",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementCacheHit(kind string) {
	m.CacheHits.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementCacheMiss(kind string) {
	m.CacheMisses.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementStoreQuery(operation string) {
	m.StoreQueries.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveBatchSize(operation string, n int) {
	m.BatchSize.WithLabelValues(operation).Observe(float64(n))
}

// ObserveFetch records the duration of a batch fetch.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveFetch(start time.Time) {
	m.FetchDuration.Observe(time.Since(start).Seconds())
}
