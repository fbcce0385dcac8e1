// Package context carries request-scoped values shared by logging, audit and outbound calls.
package context

import "context"

type key int

const (
	requestIDKey key = iota
	memberKey
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns "" when ctx is nil or carries no id.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithMemberNumber records the signed-in member so logs can name them.
func WithMemberNumber(ctx context.Context, number string) context.Context {
	return context.WithValue(ctx, memberKey, number)
}

func GetMemberNumber(ctx context.Context) string {
	return stringValue(ctx, memberKey)
}

func stringValue(ctx context.Context, k key) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(k).(string)
	return v
}
