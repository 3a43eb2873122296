package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	swipes     *prometheus.CounterVec
	dispatches *prometheus.CounterVec
	txOutcomes *prometheus.CounterVec
	unresolved *prometheus.CounterVec
	pollErrors *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		swipes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "countryswipe_swipes_total",
				Help: "Committed swipes by intent",
			},
			[]string{"intent"},
		),
		dispatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "countryswipe_trade_dispatch_total",
				Help: "Trade dispatch attempts by direction and outcome",
			},
			[]string{"direction", "outcome"},
		),
		txOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "countryswipe_tx_outcomes_total",
				Help: "Terminal transaction outcomes",
			},
			[]string{"label", "phase", "reason"},
		),
		unresolved: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "countryswipe_unresolved_country_total",
				Help: "News country labels that mapped to no tradable index",
			},
			[]string{"country"},
		),
		pollErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "countryswipe_poll_errors_total",
				Help: "Failed background queries",
			},
			[]string{"query"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "countryswipe_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordSwipe(intent string) {
	r.swipes.WithLabelValues(intent).Inc()
}

func (r *Recorder) RecordDispatch(direction, outcome string) {
	r.dispatches.WithLabelValues(direction, outcome).Inc()
}

func (r *Recorder) RecordTxOutcome(label, phase, reason string) {
	r.txOutcomes.WithLabelValues(label, phase, reason).Inc()
}

func (r *Recorder) RecordUnresolvedCountry(country string) {
	r.unresolved.WithLabelValues(country).Inc()
}

func (r *Recorder) RecordPollError(query string) {
	r.pollErrors.WithLabelValues(query).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordSwipe(string)                     {}
func (Nop) RecordDispatch(string, string)          {}
func (Nop) RecordTxOutcome(string, string, string) {}
func (Nop) RecordUnresolvedCountry(string)         {}
func (Nop) RecordPollError(string)                 {}
func (Nop) RecordLatency(string, float64)          {}
