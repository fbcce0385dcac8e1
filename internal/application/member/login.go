package member

import (
	"context"
	"time"

	"github.com/imedia765/a-051853/internal/audit"
	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/logger"
	"github.com/imedia765/a-051853/internal/pkg/retry"
)

type LoginInput struct {
	MemberNumber string
	// Password is empty for members who have never set one; the member number is used instead.
	Password  string
	IPAddress string
	UserAgent string
}

type LoginResult struct {
	Member      domain.Member
	Roles       []domain.Role
	PrimaryRole domain.Role
	Session     domain.DashboardSession
}

// transient reports whether a failed step is worth retrying.
func transient(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindInfrastructure, domain.KindUpstream:
		return true
	}
	return false
}

func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	number := domain.NormalizeMemberNumber(in.MemberNumber)
	if number == "" {
		return LoginResult{}, domain.ErrMissingField("member_number")
	}

	firstTime := in.Password == ""
	password := in.Password
	if firstTime {
		password = number
	}
	email := domain.MemberEmail(number, s.cfg.EmailDomain)
	log := logger.WithCtx(ctx).With().
		Str("member_number", number).
		Str("email", audit.MaskEmail(email)).
		Logger()

	var (
		m        domain.Member
		authSess domain.AuthSession
		obtained []string
	)

	policy := retry.Policy{
		MaxRetries:   s.cfg.LoginMaxRetries,
		InitialDelay: s.cfg.LoginInitialDelay,
		Retryable:    transient,
		OnRetry: func(n int, delay time.Duration, err error) {
			log.Warn().Err(err).Int("retry", n).Dur("delay", delay).Msg("login_retry")
		},
	}
	err := retry.Do(ctx, policy, s.sleep, func(ctx context.Context, attempt int) error {
		found, err := s.members.GetByNumber(ctx, number)
		if err != nil {
			if domain.Is(err, "member_not_found") {
				return domain.ErrMemberNotFound(number)
			}
			return err
		}

		sess, err := s.signInOrSignUp(ctx, email, password, number, firstTime)
		if err != nil {
			return err
		}
		if sess.AccessToken != "" {
			obtained = append(obtained, sess.AccessToken)
		}

		if err := s.verifySession(sess); err != nil {
			return err
		}

		if found.AuthUserID == "" {
			if err := s.members.LinkAuthUser(ctx, found.ID, sess.User.ID); err != nil {
				return err
			}
			found.AuthUserID = sess.User.ID
		} else if found.AuthUserID != sess.User.ID {
			log.Warn().
				Str("linked_user", found.AuthUserID).
				Str("session_user", sess.User.ID).
				Msg("member_auth_user_mismatch")
		}

		m, authSess = found, sess
		return nil
	})
	if err != nil {
		for _, tok := range obtained {
			if serr := s.creds.SignOut(context.WithoutCancel(ctx), tok); serr != nil {
				log.Warn().Err(serr).Msg("login_cleanup_signout_failed")
			}
		}
		s.audit.LoginFailed(ctx, number, in.IPAddress, domain.MessageOf(err))
		return LoginResult{}, err
	}

	roles, err := s.rolesFor(ctx, m.AuthUserID)
	if err != nil {
		// Roles only shape navigation; members still get the dashboard without them.
		log.Warn().Err(err).Msg("login_roles_unavailable")
	}

	now := s.now()
	dash, err := s.sessions.Create(ctx, domain.DashboardSession{
		MemberID:       m.ID,
		MemberNumber:   m.MemberNumber,
		AuthUserID:     m.AuthUserID,
		AccessToken:    authSess.AccessToken,
		RefreshToken:   authSess.RefreshToken,
		FirstTimeLogin: firstTime,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
	}, s.cfg.SessionTTL)
	if err != nil {
		if serr := s.creds.SignOut(context.WithoutCancel(ctx), authSess.AccessToken); serr != nil {
			log.Warn().Err(serr).Msg("login_session_signout_failed")
		}
		return LoginResult{}, err
	}

	s.audit.LoginSuccess(ctx, number, m.AuthUserID, in.IPAddress, firstTime)
	if s.pub != nil {
		evt := LoggedInEvent{
			MemberNumber:   number,
			AuthUserID:     m.AuthUserID,
			FirstTimeLogin: firstTime,
			IPAddress:      in.IPAddress,
			At:             now.UTC(),
		}
		if perr := s.pub.PublishMemberLoggedIn(ctx, evt); perr != nil {
			log.Warn().Err(perr).Msg("publish_logged_in_failed")
		}
	}

	return LoginResult{
		Member:      m,
		Roles:       roles,
		PrimaryRole: domain.PrimaryRole(roles),
		Session:     dash,
	}, nil
}

// signInOrSignUp creates the backend account on a member's very first login.
func (s *Service) signInOrSignUp(ctx context.Context, email, password, number string, firstTime bool) (domain.AuthSession, error) {
	sess, err := s.creds.SignInWithPassword(ctx, email, password)
	if err == nil {
		return sess, nil
	}
	if !firstTime || !domain.Is(err, "invalid_credentials") {
		return domain.AuthSession{}, err
	}

	logger.WithCtx(ctx).Info().Str("member_number", number).Msg("login_creating_account")
	sess, err = s.creds.SignUp(ctx, email, password, map[string]string{"member_number": number})
	if err != nil {
		return domain.AuthSession{}, err
	}
	if sess.User == nil || sess.User.ID == "" {
		return domain.AuthSession{}, domain.ErrAccountCreateFailed(nil)
	}
	if sess.AccessToken == "" {
		// Some backends create the user without opening a session.
		return s.creds.SignInWithPassword(ctx, email, password)
	}
	return sess, nil
}

func (s *Service) verifySession(sess domain.AuthSession) error {
	if sess.AccessToken == "" || sess.User == nil || sess.User.ID == "" {
		return domain.ErrSessionNotEstablished(nil)
	}
	if s.verifier == nil {
		return nil
	}
	sub, err := s.verifier.VerifyAccessToken(sess.AccessToken)
	if err != nil {
		return domain.ErrSessionNotEstablished(err)
	}
	if sub != sess.User.ID {
		return domain.ErrSessionNotEstablished(nil)
	}
	return nil
}
