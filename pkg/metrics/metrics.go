package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	CycleRuns       *prometheus.CounterVec
	CycleDuration   *prometheus.HistogramVec
	EventsProcessed *prometheus.CounterVec
	NewsWritten     *prometheus.CounterVec
	NewsPruned      prometheus.Counter
	ProviderErrors  *prometheus.CounterVec
	Escalations     prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CycleRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forex_pulse",
			Name:      "cycle_runs_total",
			Help:      "Cycle invocations by type and final status.",
		}, []string{"cycle", "status"}),
		CycleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "forex_pulse",
			Name:      "cycle_duration_seconds",
			Help:      "Cycle wall time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cycle"}),
		EventsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forex_pulse",
			Name:      "economic_events_total",
			Help:      "Economic events by outcome (inserted, duplicate, failed).",
		}, []string{"outcome"}),
		NewsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forex_pulse",
			Name:      "news_articles_total",
			Help:      "News articles by outcome (inserted, skipped).",
		}, []string{"outcome"}),
		NewsPruned: f.NewCounter(prometheus.CounterOpts{
			Namespace: "forex_pulse",
			Name:      "news_articles_pruned_total",
			Help:      "News articles deleted by retention.",
		}),
		ProviderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forex_pulse",
			Name:      "provider_errors_total",
			Help:      "Absorbed upstream fetch failures by endpoint.",
		}, []string{"endpoint"}),
		Escalations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "forex_pulse",
			Name:      "high_impact_escalations_total",
			Help:      "High-impact escalations dispatched.",
		}),
	}
}

func (m *Metrics) ObserveCycle(cycle, status string, seconds float64) {
	if m == nil {
		return
	}
	m.CycleRuns.WithLabelValues(cycle, status).Inc()
	m.CycleDuration.WithLabelValues(cycle).Observe(seconds)
}

func (m *Metrics) AddEvents(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.EventsProcessed.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) AddNews(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.NewsWritten.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) AddPruned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.NewsPruned.Add(float64(n))
}

func (m *Metrics) ProviderError(endpoint string) {
	if m == nil {
		return
	}
	m.ProviderErrors.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) Escalated() {
	if m == nil {
		return
	}
	m.Escalations.Inc()
}
