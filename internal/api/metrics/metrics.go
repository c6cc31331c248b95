// Package metrics defines and registers the custom Prometheus metrics for
// gameshelf. It is the single source of truth for metric names, labels and
// help strings. HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gameshelf"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionOutcomesTotal counts Access Gate resolutions.
// Label:
//   - state: "authenticated", "refresh_needed" or "unauthenticated"
var SessionOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_outcomes_total",
		Help:      "Total number of session resolutions, by resulting state.",
	},
	[]string{"state"},
)

// GateRedirectsTotal counts requests the gate sent to the login page.
// Label:
//   - cause: "unauthenticated" (no session on a protected path) or "unauthorized" (a 401 was rewritten)
var GateRedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_redirects_total",
		Help:      "Total number of login redirects issued by the access gate.",
	},
	[]string{"cause"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "locked" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "email_taken", "username_taken", "invalid" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// RateLimitedTotal counts requests rejected by the per-IP limiter.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter, by path.",
	},
	[]string{"path"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// GamesCreatedTotal counts newly created games.
var GamesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "games_created_total",
		Help:      "Total number of games added to the catalog.",
	},
)
