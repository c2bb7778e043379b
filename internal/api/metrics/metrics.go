// Package metrics defines and registers all custom Prometheus metrics for the
// backoffice API. It is the single source of truth for metric names, labels,
// and help strings. HTTP-level request metrics come from the echoprometheus
// middleware; everything here is domain-specific.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// AuthRejectionsTotal counts requests rejected by the authorization guard.
// Label:
//   - reason: "unauthenticated" or "forbidden"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected for missing or insufficient authorization.",
	},
	[]string{"reason"},
)

// SessionsIssuedTotal counts successful logins.
var SessionsIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Total number of sessions opened via login.",
	},
)

// UsersCreatedTotal counts accounts created through the admin API.
// Label:
//   - role: the role assigned to the new account
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of user accounts created, by assigned role.",
	},
	[]string{"role"},
)

// PasswordChangesTotal counts password change attempts.
// Label:
//   - outcome: "ok", "wrong_password", "validation", "error"
var PasswordChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_changes_total",
		Help:      "Total number of password change attempts, by outcome.",
	},
	[]string{"outcome"},
)

// ProjectionCacheTotal counts read-side cache lookups.
// Labels:
//   - projection: cached view name (e.g. "users:list")
//   - result: "hit" or "miss"
var ProjectionCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projection_cache_total",
		Help:      "Total number of projection cache lookups, by projection and result.",
	},
	[]string{"projection", "result"},
)
