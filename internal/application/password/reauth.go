package password

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/logger"
	"github.com/imedia765/a-051853/internal/pkg/retry"
)

const (
	DefaultReauthMaxRetries   = 3
	DefaultReauthInitialDelay = 1500 * time.Millisecond
)

var errNoPrincipal = errors.New("sign-in returned no user")

// Reauthenticator signs a member back in under a freshly set password.
type Reauthenticator struct {
	creds CredentialStore
	sleep retry.Sleeper

	maxRetries   int
	initialDelay time.Duration

	onAttempt func(attempt int, err error)
}

func NewReauthenticator(creds CredentialStore, maxRetries int, initialDelay time.Duration) *Reauthenticator {
	if maxRetries < 0 {
		maxRetries = DefaultReauthMaxRetries
	}
	if initialDelay <= 0 {
		initialDelay = DefaultReauthInitialDelay
	}
	return &Reauthenticator{
		creds:        creds,
		sleep:        retry.TimerSleep,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
	}
}

// WithSleeper swaps the backoff timer.
func (r *Reauthenticator) WithSleeper(s retry.Sleeper) *Reauthenticator {
	if s != nil {
		r.sleep = s
	}
	return r
}

// WithAttemptHook is called after every attempt; err is nil on success.
func (r *Reauthenticator) WithAttemptHook(fn func(attempt int, err error)) *Reauthenticator {
	r.onAttempt = fn
	return r
}

func (r *Reauthenticator) policy() retry.Policy {
	return retry.Policy{
		MaxRetries:   r.maxRetries,
		InitialDelay: r.initialDelay,
		Multiplier:   2,
	}
}

// Reauthenticate reports whether a session could be established. It never fails loudly.
func (r *Reauthenticator) Reauthenticate(ctx context.Context, identifier, password string) bool {
	_, ok := r.signIn(ctx, identifier, password)
	return ok
}

// signIn is Reauthenticate plus the session it obtained.
func (r *Reauthenticator) signIn(ctx context.Context, identifier, password string) (sess domain.AuthSession, ok bool) {
	log := logger.WithCtx(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("reauth_panic")
			sess, ok = domain.AuthSession{}, false
		}
	}()

	err := retry.Do(ctx, r.policy(), r.sleep, func(ctx context.Context, attempt int) error {
		s, err := r.creds.SignInWithPassword(ctx, identifier, password)
		if err == nil && (s.User == nil || s.User.ID == "") {
			err = errNoPrincipal
		}
		if r.onAttempt != nil {
			r.onAttempt(attempt, err)
		}
		if err != nil {
			logAttempt(log, attempt, r.maxRetries, err)
			return err
		}
		sess = s
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("identifier", identifier).Msg("reauth_failed")
		return domain.AuthSession{}, false
	}
	return sess, true
}

func logAttempt(log *zerolog.Logger, attempt, maxRetries int, err error) {
	log.Debug().
		Err(err).
		Str("attempt", fmt.Sprintf("%d/%d", attempt+1, maxRetries+1)).
		Msg("reauth_attempt_failed")
}
