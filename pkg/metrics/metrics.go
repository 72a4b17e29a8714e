package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aichat_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks active sessions (not expired/revoked).
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aichat_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// ChatTurns counts completed chat turns by result (success|error).
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aichat_chat_turns_total",
			Help: "Total number of chat turns",
		},
		[]string{"result"},
	)

	// StreamedTokens counts token events relayed to clients.
	StreamedTokens = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aichat_streamed_tokens_total",
			Help: "Total number of streamed token events",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aichat_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
