package member

import (
	"context"
	"time"

	"github.com/imedia765/a-051853/internal/domain"
)

type MemberFilter struct {
	// Collector restricts the list to members assigned to this collector name.
	Collector string
	// Search matches member number or full name, case-insensitively.
	Search string
	Limit  int
	Offset int
}

type MemberRepo interface {
	GetByNumber(ctx context.Context, memberNumber string) (domain.Member, error)
	GetByID(ctx context.Context, id string) (domain.Member, error)
	LinkAuthUser(ctx context.Context, memberID, authUserID string) error
	List(ctx context.Context, f MemberFilter) ([]domain.Member, error)
	UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (domain.Member, error)
}

type RoleRepo interface {
	RolesForUser(ctx context.Context, authUserID string) ([]domain.Role, error)
}

type CollectorRepo interface {
	GetByMemberNumber(ctx context.Context, memberNumber string) (domain.Collector, error)
}

type LogRepo interface {
	ListAudit(ctx context.Context, limit int) ([]domain.AuditLog, error)
	ListMonitoring(ctx context.Context, severity string, limit int) ([]domain.MonitoringLog, error)
}

type SessionStore interface {
	// Create stores s under a fresh opaque id and returns it with ID filled in.
	Create(ctx context.Context, s domain.DashboardSession, ttl time.Duration) (domain.DashboardSession, error)
	Get(ctx context.Context, id string) (domain.DashboardSession, error)
	Delete(ctx context.Context, id string) error
}

// CredentialStore is the remote auth backend.
type CredentialStore interface {
	SignInWithPassword(ctx context.Context, email, password string) (domain.AuthSession, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (domain.AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
}

// TokenVerifier checks a backend access token and returns its subject.
type TokenVerifier interface {
	VerifyAccessToken(token string) (subject string, err error)
}

type LoggedInEvent struct {
	MemberNumber   string    `json:"member_number"`
	AuthUserID     string    `json:"auth_user_id"`
	FirstTimeLogin bool      `json:"first_time_login"`
	IPAddress      string    `json:"ip_address,omitempty"`
	At             time.Time `json:"at"`
}

type ProfileUpdatedEvent struct {
	MemberID     string    `json:"member_id"`
	MemberNumber string    `json:"member_number"`
	Fields       []string  `json:"fields"`
	UpdatedBy    string    `json:"updated_by"`
	At           time.Time `json:"at"`
}

type EventPublisher interface {
	PublishMemberLoggedIn(ctx context.Context, evt LoggedInEvent) error
	PublishProfileUpdated(ctx context.Context, evt ProfileUpdatedEvent) error
}
