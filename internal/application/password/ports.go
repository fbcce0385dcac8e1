package password

import (
	"context"
	"encoding/json"
	"time"

	"github.com/imedia765/a-051853/internal/domain"
)

// ClientInfo is the best-effort diagnostic context sent along with a reset.
type ClientInfo struct {
	Platform       string `json:"platform"`
	Language       string `json:"language"`
	Timestamp      string `json:"timestamp"`
	FirstTimeLogin bool   `json:"firstTimeLogin"`
}

// ResetParams are the arguments of the remote password reset procedure.
type ResetParams struct {
	MemberNumber    string
	NewPassword     string
	CurrentPassword string // empty on first-time login
	IPAddress       string
	UserAgent       string
	ClientInfo      ClientInfo
}

// CredentialStore is the slice of the remote auth backend this flow needs.
type CredentialStore interface {
	SignInWithPassword(ctx context.Context, email, password string) (domain.AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	// CallPasswordReset returns the raw procedure payload; interpretation is ours.
	CallPasswordReset(ctx context.Context, p ResetParams) (json.RawMessage, error)
}

// SessionRemover drops the local dashboard session.
type SessionRemover interface {
	Delete(ctx context.Context, id string) error
}

// Locker guards against two concurrent submissions for the same member.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

type PasswordChangedEvent struct {
	MemberNumber    string    `json:"member_number"`
	FirstTimeLogin  bool      `json:"first_time_login"`
	Reauthenticated bool      `json:"reauthenticated"`
	IPAddress       string    `json:"ip_address,omitempty"`
	ChangedAt       time.Time `json:"changed_at"`
}

type EventPublisher interface {
	PublishPasswordChanged(ctx context.Context, evt PasswordChangedEvent) error
}
