package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/imedia765/a-051853/internal/logger"
)

// probes are polled every few seconds and would drown the access log.
var quietPaths = map[string]bool{"/healthz": true, "/readyz": true, "/metrics": true}

// writtenStatus treats a handler that never called WriteHeader as 200.
func writtenStatus(ww chimw.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}

func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := writtenStatus(ww)
		if quietPaths[r.URL.Path] && status < http.StatusInternalServerError {
			return
		}
		level := zerolog.InfoLevel
		if status >= http.StatusInternalServerError {
			level = zerolog.WarnLevel
		}
		logger.WithCtx(r.Context()).WithLevel(level).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("latency", time.Since(start)).
			Str("remote_ip", ClientIP(r)).
			Msg("dashboard request")
	})
}
