package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the document workflow.
type Metrics struct {
	Transitions          *prometheus.CounterVec
	TransitionsRejected  *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	TransitionDuration   prometheus.Histogram
}

// New creates a new Metrics instance with all workflow metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "slf_document_transitions_total",
			Help: "Applied document status transitions",
		}, []string{"from", "to"}),
		TransitionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "slf_document_transitions_rejected_total",
			Help: "Transition requests refused, by reason",
		}, []string{"reason"}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slf_document_notification_failures_total",
			Help: "Transitions whose notification fan-out failed after the status write",
		}),
		TransitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "slf_document_transition_duration_seconds",
			Help:    "Duration of Transition and Resubmit",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementTransition(from, to string) {
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncrementRejected(reason string) {
	m.TransitionsRejected.WithLabelValues(reason).Inc()
}

// ObserveTransition records the duration of a transition.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveTransition(start time.Time) {
	m.TransitionDuration.Observe(time.Since(start).Seconds())
}
