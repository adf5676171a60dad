// Package metrics exposes Prometheus counters for the verification core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VerificationsTotal counts decided verification requests by endpoint
	// and outcome status.
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "keyward",
			Name:      "verifications_total",
			Help:      "Decided verification requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	// ClassloaderBytesTotal counts encrypted release bytes streamed to
	// clients.
	ClassloaderBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "keyward",
			Name:      "classloader_bytes_total",
			Help:      "Encrypted release file bytes streamed to clients.",
		},
	)

	// RateLimitRejections counts requests rejected before any database load.
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "keyward",
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter.",
		},
		[]string{"scope"},
	)
)
