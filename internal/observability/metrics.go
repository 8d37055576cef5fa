package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Turns            *prometheus.CounterVec
	CrisisFlags      *prometheus.CounterVec
	ModelErrors      *prometheus.CounterVec
	StoreErrors      *prometheus.CounterVec
	MoodEntries      prometheus.Counter
	ModelCallLatency prometheus.Histogram
}

// NewMetrics registers the instruments on the default registry.
// Call once, from main.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns processed, by channel.",
		}, []string{"channel"}),
		CrisisFlags: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crisis_flags_total",
			Help:      "Turns whose assessment crossed the high-risk threshold, by crisis type.",
		}, []string{"type"}),
		ModelErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_errors_total",
			Help:      "Language model adapter failures by kind (call, parse).",
		}, []string{"kind"}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Store failures by operation.",
		}, []string{"op"}),
		MoodEntries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mood_entries_total",
			Help:      "Mood entries persisted.",
		}),
		ModelCallLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_latency_ms",
			Help:      "Latency of reply-generation calls in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000},
		}),
	}
}

func (m *Metrics) ObserveModelCall(d time.Duration) {
	m.ModelCallLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
