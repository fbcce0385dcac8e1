package middleware

import (
	"context"
	"net/http"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/infrastructure/security"
	appCtx "github.com/imedia765/a-051853/internal/pkg/context"
)

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (member.Identity, error)
}

// Session resolves the dashboard cookie into the caller's identity.
func Session(auth Authenticator, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid, err := security.ReadSession(r)
			if err != nil || sid == "" {
				writeErr(w, r, domain.ErrSessionMissing())
				return
			}

			id, err := auth.Authenticate(r.Context(), sid)
			if err != nil {
				writeErr(w, r, err)
				return
			}
			ctx := appCtx.WithMemberNumber(WithIdentity(r.Context(), id), id.Session.MemberNumber)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTab admits callers whose roles open tab. Session must run first.
func RequireTab(tab domain.Tab, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeErr(w, r, domain.ErrSessionMissing())
				return
			}
			if !id.Can(tab) {
				writeErr(w, r, domain.ErrTabNotAllowed(string(tab)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
