package password

import (
	"context"
	"fmt"
	"time"

	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/logger"
	"github.com/imedia765/a-051853/internal/pkg/retry"
)

const (
	DefaultEmailDomain = "temp.com"
	DefaultSettleDelay = 1500 * time.Millisecond

	successMessage = "password updated successfully"
)

type Config struct {
	// EmailDomain builds the sign-in identifier from the member number.
	EmailDomain string
	// SettleDelay is the pause between a successful reset and the first sign-in attempt.
	SettleDelay time.Duration
	// GuardTTL bounds how long a submission holds the per-member lock.
	GuardTTL time.Duration
}

// Outcome is what the caller gets back from a password change.
type Outcome struct {
	Success         bool
	Message         string
	Reauthenticated bool
	RedirectTo      string
	Trail           []State
}

// Orchestrator runs the password change flow.
type Orchestrator struct {
	creds    CredentialStore
	reauth   *Reauthenticator
	teardown *Teardown

	guard     Locker
	pub       EventPublisher
	observers []Observer

	sleep retry.Sleeper
	now   func() time.Time
	cfg   Config
}

func NewOrchestrator(creds CredentialStore, reauth *Reauthenticator, teardown *Teardown, cfg Config) *Orchestrator {
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = DefaultEmailDomain
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.GuardTTL <= 0 {
		cfg.GuardTTL = 30 * time.Second
	}
	return &Orchestrator{
		creds:    creds,
		reauth:   reauth,
		teardown: teardown,
		sleep:    retry.TimerSleep,
		now:      time.Now,
		cfg:      cfg,
	}
}

// WithGuard rejects a second submission for a member while one is running.
func (o *Orchestrator) WithGuard(l Locker) *Orchestrator {
	o.guard = l
	return o
}

func (o *Orchestrator) WithPublisher(p EventPublisher) *Orchestrator {
	o.pub = p
	return o
}

// WithObserver registers an observer for every run.
func (o *Orchestrator) WithObserver(obs Observer) *Orchestrator {
	if obs != nil {
		o.observers = append(o.observers, obs)
	}
	return o
}

// WithSleeper replaces the settle-delay timer.
func (o *Orchestrator) WithSleeper(s retry.Sleeper) *Orchestrator {
	if s != nil {
		o.sleep = s
	}
	return o
}

func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	if now != nil {
		o.now = now
	}
	return o
}

// ChangePassword validates req, asks the backend to change the password and, once it has,
// signs the member back in before ending every session. A non-nil error is always a
// *domain.Error and Outcome.Message carries its user-facing wording.
func (o *Orchestrator) ChangePassword(ctx context.Context, req Request, opts ...Option) (out Outcome, err error) {
	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}
	tr := &tracker{
		member:    req.MemberNumber,
		observers: append(append([]Observer(nil), o.observers...), ro.observers...),
	}
	log := logger.WithCtx(ctx).With().Str("member_number", req.MemberNumber).Logger()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("password_change_panic")
			err = domain.ErrUnexpected(fmt.Errorf("panic: %v", rec))
			tr.emit(StateTerminal, err, false)
			out = Outcome{Message: domain.MessageOf(err), Trail: tr.trail}
		}
	}()

	fail := func(from State, e error) (Outcome, error) {
		if from != "" {
			tr.emit(from, e, false)
		}
		tr.emit(StateTerminal, e, false)
		return Outcome{Message: domain.MessageOf(e), Trail: tr.trail}, e
	}

	tr.emit(StateIdle, nil, false)
	tr.emit(StateValidating, nil, false)
	if verr := req.Validate(); verr != nil {
		return fail("", verr)
	}

	if o.guard != nil {
		key := "pwchange:" + domain.NormalizeMemberNumber(req.MemberNumber)
		token, ok, gerr := o.guard.Acquire(ctx, key, o.cfg.GuardTTL)
		switch {
		case gerr != nil:
			// A broken guard must not block members from changing their password.
			log.Warn().Err(gerr).Msg("password_change_guard_unavailable")
		case !ok:
			return fail("", domain.ErrChangeInProgress())
		default:
			defer func() {
				if rerr := o.guard.Release(context.WithoutCancel(ctx), key, token); rerr != nil {
					log.Warn().Err(rerr).Msg("password_change_guard_release_failed")
				}
			}()
		}
	}

	tr.emit(StateSubmitting, nil, false)
	raw, callErr := o.creds.CallPasswordReset(ctx, o.resetParams(req))
	if callErr != nil {
		de := classifyCallError(callErr)
		log.Warn().Err(callErr).Str("code", de.Code).Msg("password_reset_call_failed")
		return fail(StateRemoteFailure, de)
	}
	if de := classifyPayload(raw); de != nil {
		log.Warn().Str("code", de.Code).Str("reason", de.Message).Msg("password_reset_rejected")
		return fail(StateRemoteFailure, de)
	}
	tr.emit(StateRemoteSuccess, nil, false)
	log.Info().Msg("password_reset_succeeded")

	// From here the password has changed server-side; nothing below may fail the flow.
	tr.emit(StateReauthPending, nil, false)
	if serr := o.sleep(ctx, o.cfg.SettleDelay); serr != nil {
		log.Warn().Err(serr).Msg("password_settle_interrupted")
	}

	identifier := domain.MemberEmail(req.MemberNumber, o.cfg.EmailDomain)
	sess, reauthed := o.reauth.signIn(ctx, identifier, req.NewPassword)
	if !reauthed {
		log.Warn().Msg("password_changed_but_reauth_failed")
	}
	tr.emit(StateReauthDone, nil, reauthed)

	target := Target{AccessToken: req.AccessToken, SessionID: req.SessionID}
	if reauthed {
		target.AccessToken = sess.AccessToken
	}
	redirect := o.teardown.Finalize(context.WithoutCancel(ctx), target)
	tr.emit(StateTornDown, nil, reauthed)

	o.publish(ctx, req, reauthed)

	tr.emit(StateTerminal, nil, reauthed)
	out = Outcome{
		Success:         true,
		Message:         successMessage,
		Reauthenticated: reauthed,
		RedirectTo:      redirect,
		Trail:           tr.trail,
	}
	if ro.onSuccess != nil {
		ro.onSuccess(out)
	}
	return out, nil
}

func (o *Orchestrator) resetParams(req Request) ResetParams {
	p := ResetParams{
		MemberNumber: req.MemberNumber,
		NewPassword:  req.NewPassword,
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
		ClientInfo: ClientInfo{
			Platform:       req.Platform,
			Language:       req.Language,
			Timestamp:      o.now().UTC().Format(time.RFC3339),
			FirstTimeLogin: req.FirstTimeLogin,
		},
	}
	if !req.FirstTimeLogin {
		p.CurrentPassword = req.CurrentPassword
	}
	return p
}

func (o *Orchestrator) publish(ctx context.Context, req Request, reauthed bool) {
	if o.pub == nil {
		return
	}
	evt := PasswordChangedEvent{
		MemberNumber:    req.MemberNumber,
		FirstTimeLogin:  req.FirstTimeLogin,
		Reauthenticated: reauthed,
		IPAddress:       req.IPAddress,
		ChangedAt:       o.now().UTC(),
	}
	if err := o.pub.PublishPasswordChanged(context.WithoutCancel(ctx), evt); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("publish_password_changed_failed")
	}
}
