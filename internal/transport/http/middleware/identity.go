package middleware

import (
	"context"

	"github.com/imedia765/a-051853/internal/application/member"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

func WithIdentity(ctx context.Context, id member.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

func IdentityFromContext(ctx context.Context) (member.Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(member.Identity)
	return id, ok && id.Session.ID != ""
}
