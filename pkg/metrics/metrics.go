// Copyright 2025 Certen Protocol
//
// Prometheus metrics for the validator service, exposed on MetricsAddr's
// /metrics endpoint via promhttp, the same exposition mechanism the
// broader example pack's services use wherever they import
// prometheus/client_golang.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every counter/histogram/gauge the validator emits.
type Metrics struct {
	AttestBurnRequests  *prometheus.CounterVec
	AttestBurnLatency   *prometheus.HistogramVec
	BurnsDetected       prometheus.Counter
	FinalityRejections  prometheus.Counter
	ValidatorSetVersion prometheus.Gauge
}

// New registers and returns the validator's metric set against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AttestBurnRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge_validator",
			Name:      "attest_burn_requests_total",
			Help:      "Total /attest-burn requests, labelled by outcome kind.",
		}, []string{"kind"}),

		AttestBurnLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bridge_validator",
			Name:      "attest_burn_duration_seconds",
			Help:      "Latency of the detect_burn -> enforce_finality -> sign pipeline.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),

		BurnsDetected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge_validator",
			Name:      "burns_detected_total",
			Help:      "Total burns successfully detected by the burn observer.",
		}),

		FinalityRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge_validator",
			Name:      "finality_rejections_total",
			Help:      "Total requests rejected by the finality gate as not-yet-final.",
		}),

		ValidatorSetVersion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "bridge_validator",
			Name:      "validator_set_version",
			Help:      "Current validator set version as last observed by this validator.",
		}),
	}
}
