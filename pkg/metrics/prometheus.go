package metrics

import (
	"FinSignal/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scansTotal      *prometheus.CounterVec
	outcomesTotal   *prometheus.CounterVec
	signalsTotal    *prometheus.CounterVec
	sizingFallbacks *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastScore       *prometheus.GaugeVec
	lastEntry       *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		scansTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_scans_total",
				Help: "Total number of scan runs by status",
			},
			[]string{"status"},
		),
		outcomesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_analysis_outcomes_total",
				Help: "Analysis outcomes by symbol and reason",
			},
			[]string{"symbol", "reason"},
		),
		signalsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_signals_total",
				Help: "Total number of signals emitted",
			},
			[]string{"symbol", "side"},
		),
		sizingFallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_sizing_fallbacks_total",
				Help: "Signals whose position size fell back to the default",
			},
			[]string{"symbol"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsignal_last_signal_score",
				Help: "Score of the last signal for a symbol",
			},
			[]string{"symbol"},
		),
		lastEntry: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsignal_last_entry_price",
				Help: "Entry price of the last signal for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsignal_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordScan counts a scan run.
func (r *Recorder) RecordScan(status string) {
	r.scansTotal.WithLabelValues(status).Inc()
}

// RecordOutcome counts one analysis result.
func (r *Recorder) RecordOutcome(symbol string, reason models.NoSignalReason) {
	r.outcomesTotal.WithLabelValues(symbol, string(reason)).Inc()
}

// RecordSignal counts an emitted signal and tracks its score and entry.
func (r *Recorder) RecordSignal(symbol string, side models.Side, score, entry float64) {
	r.signalsTotal.WithLabelValues(symbol, string(side)).Inc()
	r.lastScore.WithLabelValues(symbol).Set(score)
	r.lastEntry.WithLabelValues(symbol).Set(entry)
}

// RecordSizingFallback counts a signal sized with the default quantity.
func (r *Recorder) RecordSizingFallback(symbol string) {
	r.sizingFallbacks.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
