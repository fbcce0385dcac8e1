package middleware

import (
	"net/http"

	"github.com/google/uuid"

	appCtx "github.com/imedia765/a-051853/internal/pkg/context"
)

const (
	HeaderXRequestID = "X-Request-Id"
	maxRequestIDLen  = 128
)

// RequestID keeps a sane inbound X-Request-Id, otherwise mints a UUID.
// The id is echoed back so members can quote it to support.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderXRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderXRequestID, id)
		ctx := appCtx.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
