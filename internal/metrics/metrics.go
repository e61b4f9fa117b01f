package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/mediremind/api/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	CodesIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediremind",
		Name:      "verification_codes_issued_total",
		Help:      "Verification codes issued, by purpose.",
	}, []string{"purpose"})

	CodeVerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediremind",
		Name:      "code_verifications_total",
		Help:      "Code verification attempts, by result.",
	}, []string{"result"})

	LoginFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mediremind",
		Name:      "login_failures_total",
		Help:      "Failed login attempts (unknown email or wrong password).",
	})

	LoginsRateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mediremind",
		Name:      "logins_rate_limited_total",
		Help:      "Login attempts refused inside a lockout window.",
	})

	// Reminder worker metrics

	RemindersSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediremind",
		Name:      "reminders_sent_total",
		Help:      "Notifications written by the reminder worker, by kind.",
	}, []string{"kind"})

	ReminderCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mediremind",
		Name:      "reminder_cycle_duration_seconds",
		Help:      "Time taken for one reminder worker cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	SessionsPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mediremind",
		Name:      "verification_sessions_purged_total",
		Help:      "Expired verification sessions removed by the cleaner.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mediremind",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediremind",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		CodesIssuedTotal,
		CodeVerificationsTotal,
		LoginFailuresTotal,
		LoginsRateLimitedTotal,
		RemindersSentTotal,
		ReminderCycleDuration,
		SessionsPurgedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness endpoints
// on the operational port.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
