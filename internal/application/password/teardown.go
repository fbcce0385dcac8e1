package password

import (
	"context"

	"github.com/imedia765/a-051853/internal/logger"
)

const DefaultLoginPath = "/login"

// Teardown ends every session the member holds and names where to send them next.
type Teardown struct {
	creds     CredentialStore
	sessions  SessionRemover
	loginPath string
}

func NewTeardown(creds CredentialStore, sessions SessionRemover, loginPath string) *Teardown {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &Teardown{creds: creds, sessions: sessions, loginPath: loginPath}
}

// Target identifies the sessions to end.
type Target struct {
	AccessToken string
	SessionID   string
}

// Finalize signs out once and returns the redirect target. Failures are logged, never returned.
func (t *Teardown) Finalize(ctx context.Context, target Target) string {
	log := logger.WithCtx(ctx)

	if err := t.creds.SignOut(ctx, target.AccessToken); err != nil {
		log.Warn().Err(err).Msg("teardown_signout_failed")
	}
	if t.sessions != nil && target.SessionID != "" {
		if err := t.sessions.Delete(ctx, target.SessionID); err != nil {
			log.Warn().Err(err).Msg("teardown_session_delete_failed")
		}
	}
	return t.loginPath
}
