// Package metrics defines the prometheus collectors of the publish pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	OpsGenerated   *prometheus.CounterVec
	EditsPublished prometheus.Counter
	Transactions   *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg when it is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OpsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "grc20_ops_generated_total", Help: "Ops produced by transforms"},
			[]string{"kind"},
		),
		EditsPublished: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "grc20_edits_published_total", Help: "Edits uploaded to IPFS"},
		),
		Transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "grc20_transactions_total", Help: "Edit transactions by outcome"},
			[]string{"status"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grc20_stage_duration_seconds",
				Help:    "Duration of each publish stage",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.OpsGenerated, m.EditsPublished, m.Transactions, m.StageDuration)
	}
	return m
}

func (m *Metrics) AddOps(kind string, n int) {
	if m == nil {
		return
	}
	m.OpsGenerated.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) EditPublished() {
	if m == nil {
		return
	}
	m.EditsPublished.Inc()
}

// Transaction counts a transaction outcome: "confirmed", "failed" or "reverted".
func (m *Metrics) Transaction(status string) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(status).Inc()
}

// Since records the time elapsed since start under stage.
func (m *Metrics) Since(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler exposes g in the prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
