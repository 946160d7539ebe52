package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	IdentitiesRegistered *prometheus.CounterVec
	Logins               prometheus.Counter
	AuthFailures         prometheus.Counter
	TokensIssued         prometheus.Counter

	CredentialLookups   *prometheus.CounterVec
	PublicVerifications *prometheus.CounterVec
	ForbiddenRequests   prometheus.Counter
	ScancodesRendered   prometheus.Counter
	ScancodeCacheHits   prometheus.Counter

	LedgerLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		IdentitiesRegistered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credgate_identities_registered_total",
			Help: "Total number of identities registered, labeled by role",
		}, []string{"role"}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credgate_logins_total",
			Help: "Total number of successful logins",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credgate_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credgate_tokens_issued_total",
			Help: "Total number of session tokens issued",
		}),
		CredentialLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credgate_credential_lookups_total",
			Help: "Total number of credential lookups, labeled by operation",
		}, []string{"operation"}),
		PublicVerifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credgate_public_verifications_total",
			Help: "Total number of anonymous verification requests, labeled by outcome",
		}, []string{"outcome"}),
		ForbiddenRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credgate_forbidden_requests_total",
			Help: "Total number of role-scoped requests rejected as forbidden",
		}),
		ScancodesRendered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credgate_scancodes_rendered_total",
			Help: "Total number of scannable verification codes rendered",
		}),
		ScancodeCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credgate_scancode_cache_hits_total",
			Help: "Total number of scannable code renders served from cache",
		}),
		LedgerLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credgate_ledger_latency_seconds",
			Help:    "Latency of ledger gateway calls in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}
