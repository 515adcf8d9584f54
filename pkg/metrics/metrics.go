package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AuthAttempts counts credential checks by outcome (success/failed/blocked)
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensekit_auth_attempts_total",
			Help: "Credential check outcomes",
		},
		[]string{"status"},
	)

	// LicenseOps counts license state transitions by action
	LicenseOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensekit_license_operations_total",
			Help: "License operations (activate, deactivate, transfer, revoke)",
		},
		[]string{"action"},
	)

	// WebhookDeliveries counts outbound webhook attempts by outcome
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensekit_webhook_deliveries_total",
			Help: "Outbound deactivation webhook outcomes",
		},
		[]string{"outcome"},
	)

	// RateLimited counts requests rejected by the rate limiter per scope
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensekit_rate_limited_total",
			Help: "Requests rejected by the sliding-window limiter",
		},
		[]string{"scope"},
	)
)

func init() {
	prometheus.MustRegister(AuthAttempts, LicenseOps, WebhookDeliveries, RateLimited)
}
