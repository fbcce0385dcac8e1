package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	appCtx "github.com/imedia765/a-051853/internal/pkg/context"
)

// Logger writes structured audit lines for member account events.
// A nil *Logger discards everything.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

func (l *Logger) LoginSuccess(ctx context.Context, memberNumber, authUserID, ip string, firstTime bool) {
	if l == nil {
		return
	}
	l.log.Info().
		Str("action", "login_success").
		Str("member_number", memberNumber).
		Str("auth_user_id", authUserID).
		Bool("first_time_login", firstTime).
		Str("ip", ip).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Member logged in")
}

func (l *Logger) LoginFailed(ctx context.Context, memberNumber, ip, reason string) {
	if l == nil {
		return
	}
	l.log.Warn().
		Str("action", "login_failed").
		Str("member_number", memberNumber).
		Str("ip", ip).
		Str("reason", reason).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Member login failed")
}

func (l *Logger) Logout(ctx context.Context, memberNumber string) {
	if l == nil {
		return
	}
	l.log.Info().
		Str("action", "logout").
		Str("member_number", memberNumber).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Member logged out")
}

func (l *Logger) PasswordChanged(ctx context.Context, memberNumber string, reauthenticated bool) {
	if l == nil {
		return
	}
	l.log.Info().
		Str("action", "password_changed").
		Str("member_number", memberNumber).
		Bool("reauthenticated", reauthenticated).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Member password changed")
}

func (l *Logger) PasswordChangeFailed(ctx context.Context, memberNumber, code string) {
	if l == nil {
		return
	}
	l.log.Warn().
		Str("action", "password_change_failed").
		Str("member_number", memberNumber).
		Str("code", code).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Member password change failed")
}

func (l *Logger) ProfileUpdated(ctx context.Context, targetMemberID, actorMemberNumber string, fields []string) {
	if l == nil {
		return
	}
	l.log.Info().
		Str("action", "profile_updated").
		Str("target_member_id", targetMemberID).
		Str("actor_member_number", actorMemberNumber).
		Str("fields", strings.Join(fields, ",")).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Member profile updated")
}

// MaskEmail partially masks an email for logs.
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 5 || at < 0 {
		return "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
