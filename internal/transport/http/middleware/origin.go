package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/imedia765/a-051853/internal/domain"
)

// OriginCheck rejects state-changing requests whose Origin (or Referer) host is not listed.
// Cookie sessions make every write here a CSRF target. An empty list disables the check.
func OriginCheck(allowedOrigins []string, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			allowed[strings.ToLower(u.Host)] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = r.Header.Get("Referer")
			}
			if origin == "" {
				writeErr(w, r, domain.ErrOriginRejected("missing_origin"))
				return
			}
			u, err := url.Parse(origin)
			if err != nil || u.Host == "" {
				writeErr(w, r, domain.ErrOriginRejected("invalid_origin"))
				return
			}
			if _, ok := allowed[strings.ToLower(u.Host)]; !ok {
				writeErr(w, r, domain.ErrOriginRejected("origin_not_allowed"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
