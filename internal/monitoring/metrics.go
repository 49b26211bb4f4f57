package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsAnalyzed tracks analyzed transactions per contract
	TransactionsAnalyzed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_transactions_analyzed_total",
			Help: "Total number of transactions run through the detector pipeline",
		},
	)

	// PatternMatchesTotal tracks pattern matches by pattern id
	PatternMatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_pattern_matches_total",
			Help: "Total number of vulnerability pattern matches",
		},
		[]string{"pattern"},
	)

	// AnomaliesDetected tracks statistical anomalies
	AnomaliesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_anomalies_detected_total",
			Help: "Total number of transaction value anomalies detected",
		},
	)

	// AlertsRaisedTotal tracks raised alerts by risk level
	AlertsRaisedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_alerts_raised_total",
			Help: "Total number of alerts raised",
		},
		[]string{"level"},
	)

	// GatewayCallsTotal tracks gateway requests per endpoint
	GatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_gateway_calls_total",
			Help: "Total number of MultiversX gateway requests",
		},
		[]string{"endpoint"},
	)

	// GatewayErrorsTotal tracks gateway failures by error type
	GatewayErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_gateway_errors_total",
			Help: "Total number of MultiversX gateway errors",
		},
		[]string{"error_type"},
	)

	// AICallsTotal tracks source review calls to the AI provider
	AICallsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_ai_calls_total",
			Help: "Total number of AI source review calls",
		},
	)

	// AIErrorsTotal tracks AI provider failures by error type
	AIErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_ai_errors_total",
			Help: "Total number of AI source review failures",
		},
		[]string{"error_type"},
	)

	// AILatency tracks AI provider call latency
	AILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_ai_latency_seconds",
			Help:    "AI source review latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PollCyclesTotal tracks completed polling cycles
	PollCyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_poll_cycles_total",
			Help: "Total number of completed transaction polling cycles",
		},
	)
)
