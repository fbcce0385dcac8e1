package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/infrastructure/redis"
	"github.com/imedia765/a-051853/internal/logger"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (redis.Decision, error)
}

type RouteLimit struct {
	Name   string
	Limit  int
	Window time.Duration
}

// RateLimit counts requests per caller in Redis. Without a limiter, or while Redis
// errors, it falls back to an in-process httprate limiter with the same budget.
func RateLimit(limiter RateLimiter, rl RouteLimit, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if rl.Window <= 0 {
		rl.Window = time.Minute
	}
	if rl.Name == "" {
		rl.Name = "default"
	}

	local := httprate.Limit(rl.Limit, rl.Window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) { return callerKey(r), nil }),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeErr(w, r, domain.ErrRateLimited(rl.Name))
		}),
	)

	return func(next http.Handler) http.Handler {
		fallback := local(next)
		if limiter == nil {
			return fallback
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "rl:" + rl.Name + ":" + callerKey(r)
			dec, err := limiter.Allow(r.Context(), key, rl.Limit, rl.Window)
			if err != nil {
				logger.WithCtx(r.Context()).Warn().Err(err).Str("route", rl.Name).Msg("ratelimit_fallback_local")
				fallback.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
			if !dec.Allowed {
				if dec.RetryAfter > 0 {
					secs := int(dec.RetryAfter.Round(time.Second) / time.Second)
					if secs < 1 {
						secs = 1
					}
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				writeErr(w, r, domain.ErrRateLimited(rl.Name))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// callerKey prefers the signed-in member over the client address.
func callerKey(r *http.Request) string {
	if id, ok := IdentityFromContext(r.Context()); ok && id.Session.MemberNumber != "" {
		return "m:" + id.Session.MemberNumber
	}
	return "ip:" + ClientIP(r)
}

// ClientIP trusts RemoteAddr only; run chi's RealIP in front when behind a proxy.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}
