package memory

import (
	"context"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/application/password"
	"github.com/imedia765/a-051853/internal/logger"
)

// NoopPublisher logs events instead of sending them; used when no broker is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishMemberLoggedIn(ctx context.Context, evt member.LoggedInEvent) error {
	logger.WithCtx(ctx).Info().
		Str("member_number", evt.MemberNumber).
		Bool("first_time_login", evt.FirstTimeLogin).
		Msg("noop_pub member.logged_in")
	return nil
}

func (p *NoopPublisher) PublishProfileUpdated(ctx context.Context, evt member.ProfileUpdatedEvent) error {
	logger.WithCtx(ctx).Info().
		Str("member_id", evt.MemberID).
		Strs("fields", evt.Fields).
		Msg("noop_pub member.profile.updated")
	return nil
}

func (p *NoopPublisher) PublishPasswordChanged(ctx context.Context, evt password.PasswordChangedEvent) error {
	logger.WithCtx(ctx).Info().
		Str("member_number", evt.MemberNumber).
		Bool("reauthenticated", evt.Reauthenticated).
		Msg("noop_pub member.password.changed")
	return nil
}
