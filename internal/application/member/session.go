package member

import (
	"context"
	"strings"

	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/logger"
)

// Identity is the authenticated caller of a dashboard request.
type Identity struct {
	Session domain.DashboardSession
	Roles   []domain.Role
}

func (i Identity) Can(tab domain.Tab) bool { return domain.CanAccessTab(i.Roles, tab) }

func (i Identity) IsAdmin() bool { return domain.HasRole(i.Roles, domain.RoleAdmin) }

// Authenticate resolves a dashboard session id into the caller's identity.
func (s *Service) Authenticate(ctx context.Context, sessionID string) (Identity, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Identity{}, domain.ErrSessionMissing()
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Identity{}, err
	}
	if !sess.ExpiresAt.IsZero() && s.now().After(sess.ExpiresAt) {
		_ = s.sessions.Delete(ctx, sessionID)
		return Identity{}, domain.ErrSessionInvalid()
	}

	roles, err := s.rolesFor(ctx, sess.AuthUserID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Session: sess, Roles: roles}, nil
}

// Logout ends both the backend session and the dashboard session. Unknown sessions are fine.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if domain.Is(err, "session_invalid") {
			return nil
		}
		return err
	}

	if err := s.creds.SignOut(ctx, sess.AccessToken); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("logout_remote_signout_failed")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.audit.Logout(ctx, sess.MemberNumber)
	return nil
}
