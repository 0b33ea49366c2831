package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "zipfit"

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	RankingsTotal    *prometheus.CounterVec
	RankingDuration  prometheus.Histogram
	InsightsTotal    *prometheus.CounterVec
	StretchShown     prometheus.Counter
	CatalogSize      prometheus.Gauge
	OverrideCount    prometheus.Gauge
	CatalogRefreshes *prometheus.CounterVec
	NarratorCalls    *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer to
// expose them on the standard /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RankingsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rankings_total",
			Help:      "Ranking requests served, by budget tier.",
		}, []string{"tier"}),
		RankingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_seconds",
			Help:      "Time spent running the scoring pipeline.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		InsightsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insights_total",
			Help:      "Insights generated, by type.",
		}, []string{"type"}),
		StretchShown: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stretch_candidates_shown_total",
			Help:      "Shown candidates flagged as over budget.",
		}),
		CatalogSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_localities",
			Help:      "Localities in the current catalog snapshot.",
		}),
		OverrideCount: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_overrides",
			Help:      "Stored attribute overrides in the current snapshot.",
		}),
		CatalogRefreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_refreshes_total",
			Help:      "Catalog reloads from the store, by result.",
		}, []string{"result"}),
		NarratorCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narrator_calls_total",
			Help:      "Narrator requests, by result.",
		}, []string{"result"}),
	}
}

// ObserveRanking records one completed ranking.
func (m *Metrics) ObserveRanking(tier string, elapsed time.Duration, insightTypes []string, stretch int) {
	if m == nil {
		return
	}
	m.RankingsTotal.WithLabelValues(tier).Inc()
	m.RankingDuration.Observe(elapsed.Seconds())
	for _, t := range insightTypes {
		m.InsightsTotal.WithLabelValues(t).Inc()
	}
	m.StretchShown.Add(float64(stretch))
}

// ObserveRefresh records a catalog reload.
func (m *Metrics) ObserveRefresh(localities, overrides int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.CatalogRefreshes.WithLabelValues("error").Inc()
		return
	}
	m.CatalogRefreshes.WithLabelValues("ok").Inc()
	m.CatalogSize.Set(float64(localities))
	m.OverrideCount.Set(float64(overrides))
}

// ObserveNarration records a narrator call outcome: ok, error or skipped.
func (m *Metrics) ObserveNarration(result string) {
	if m == nil {
		return
	}
	m.NarratorCalls.WithLabelValues(result).Inc()
}
