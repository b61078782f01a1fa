// Package metrics exposes Prometheus collectors for comparisons and fetches.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for ComparisonsTotal.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeNoData    = "no_data"
	OutcomeNoOverlap = "no_overlap"
	OutcomeError     = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ComparisonsTotal *prometheus.CounterVec
	FetchDuration    *prometheus.HistogramVec
	SignalsTotal     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ComparisonsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "pairsentinel_comparisons_total", Help: "Pair comparisons by outcome"},
			[]string{"outcome"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pairsentinel_fetch_duration_seconds",
				Help:    "Market-data fetch latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "result"},
		),
		SignalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "pairsentinel_signals_total", Help: "Trade signals emitted by direction"},
			[]string{"direction"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.ComparisonsTotal, m.FetchDuration, m.SignalsTotal)
	}
	return m
}

func (m *Metrics) ObserveComparison(outcome string) {
	if m == nil {
		return
	}
	m.ComparisonsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFetch(source string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.FetchDuration.WithLabelValues(source, result).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveSignal(direction string) {
	if m == nil {
		return
	}
	m.SignalsTotal.WithLabelValues(direction).Inc()
}

// Handler serves the exposition format for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
