package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cms", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cms", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// LoginAttempts is labelled by result: success | invalid | unconfigured | bad_request | error.
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cms", Name: "login_attempts_total", Help: "Operator login attempts by result."},
		[]string{"result"},
	)
	// ContentWrites is labelled by backend (file | memory | redis | mongo) and
	// result (ok | invalid | error).
	ContentWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cms", Name: "content_writes_total", Help: "Content document replace attempts by backend and result."},
		[]string{"backend", "result"},
	)
	// Uploads is labelled by result: ok | no_file | too_large | bad_type | error.
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cms", Name: "uploads_total", Help: "File uploads by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(ContentWrites)
	reg.MustRegister(Uploads)
}
