package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imedia765/a-051853/internal/application/password"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"method", "endpoint", "status"},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "member_logins_total",
			Help: "Dashboard logins by result",
		},
		[]string{"result", "first_time"},
	)

	passwordFlowStates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "member_password_change_states_total",
			Help: "Password change flow transitions by state",
		},
		[]string{"state"},
	)

	passwordChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "member_password_changes_total",
			Help: "Finished password change flows by result",
		},
		[]string{"result"},
	)

	reauthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "member_reauth_attempts_total",
			Help: "Sign-in attempts made after a password change",
		},
		[]string{"result"},
	)
)

func RecordHTTPRequest(method, endpoint string, status int, d time.Duration) {
	s := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, endpoint, s).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, s).Observe(d.Seconds())
}

func RecordLogin(ok, firstTime bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	loginsTotal.WithLabelValues(result, strconv.FormatBool(firstTime)).Inc()
}

// PasswordObserver counts every flow transition, plus one result per finished flow.
func PasswordObserver() password.Observer {
	return func(ev password.Event) {
		passwordFlowStates.WithLabelValues(string(ev.State)).Inc()
		if ev.State != password.StateTerminal {
			return
		}
		switch {
		case ev.Err != nil:
			passwordChangesTotal.WithLabelValues("failure").Inc()
		case ev.Reauthenticated:
			passwordChangesTotal.WithLabelValues("success_reauthenticated").Inc()
		default:
			passwordChangesTotal.WithLabelValues("success").Inc()
		}
	}
}

// ReauthAttemptHook plugs into password.Reauthenticator.WithAttemptHook.
func ReauthAttemptHook() func(attempt int, err error) {
	return func(_ int, err error) {
		if err != nil {
			reauthAttemptsTotal.WithLabelValues("failure").Inc()
			return
		}
		reauthAttemptsTotal.WithLabelValues("success").Inc()
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
