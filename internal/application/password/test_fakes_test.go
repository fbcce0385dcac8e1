package password

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/imedia765/a-051853/internal/domain"
)

/*
Fakes for ports
*/

type signInCall struct{ email, password string }

type fakeCreds struct {
	mu sync.Mutex

	// reset procedure
	resetPayload string
	resetErr     error
	resetCalls   []ResetParams

	// sign-in script: one entry per attempt, last entry repeats
	signInResults []signInResult
	signInCalls   []signInCall

	signOutErr   error
	signOutCalls []string

	panicOnReset bool
}

type signInResult struct {
	sess domain.AuthSession
	err  error
}

func okSignIn(token string) signInResult {
	return signInResult{sess: domain.AuthSession{AccessToken: token, User: &domain.AuthUser{ID: "u-1"}}}
}

func failSignIn(msg string) signInResult {
	return signInResult{err: errors.New(msg)}
}

func newFakeCreds(payload string) *fakeCreds {
	return &fakeCreds{resetPayload: payload}
}

func (f *fakeCreds) CallPasswordReset(ctx context.Context, p ResetParams) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOnReset {
		panic("backend exploded")
	}
	f.resetCalls = append(f.resetCalls, p)
	if f.resetErr != nil {
		return nil, f.resetErr
	}
	return json.RawMessage(f.resetPayload), nil
}

func (f *fakeCreds) SignInWithPassword(ctx context.Context, email, password string) (domain.AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signInCalls = append(f.signInCalls, signInCall{email, password})
	if len(f.signInResults) == 0 {
		return domain.AuthSession{}, errors.New("no script")
	}
	i := len(f.signInCalls) - 1
	if i >= len(f.signInResults) {
		i = len(f.signInResults) - 1
	}
	r := f.signInResults[i]
	return r.sess, r.err
}

func (f *fakeCreds) SignOut(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls = append(f.signOutCalls, accessToken)
	return f.signOutErr
}

type fakeSessions struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeSessions) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	err      error
	released []string
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[string]string{}} }

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.held[key] = "tok"
	return "tok", true, nil
}

func (l *fakeLocker) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	l.released = append(l.released, key)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []PasswordChangedEvent
	err    error
}

func (p *fakePublisher) PublishPasswordChanged(ctx context.Context, evt PasswordChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

type fakeSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

// messageErr mimics a transport error carrying the backend's wording.
type messageErr struct{ msg string }

func (e messageErr) Error() string         { return "rpc failed: " + e.msg }
func (e messageErr) RemoteMessage() string { return e.msg }
