package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imedia765/a-051853/internal/application/password"
	"github.com/imedia765/a-051853/internal/domain"
)

const (
	maxFailedResets = 5
	resetLockout    = 15 * time.Minute
	accessTokenTTL  = time.Hour
)

type Hasher interface {
	Hash(password string) (string, error)
	Matches(hash, password string) bool
}

type Signer interface {
	SignAccessToken(userID, email string, ttl time.Duration) (string, error)
}

type account struct {
	id          string
	email       string
	hash        string
	meta        map[string]string
	failed      int
	lockedUntil time.Time
}

// CredentialStore emulates the hosted auth backend for local runs: accounts, sessions and
// the password reset procedure.
type CredentialStore struct {
	mu sync.Mutex

	byEmail map[string]*account
	// access token -> user id
	tokens map[string]string

	hasher      Hasher
	signer      Signer
	emailDomain string
	now         func() time.Time
}

func NewCredentialStore(h Hasher, s Signer, emailDomain string) *CredentialStore {
	if emailDomain == "" {
		emailDomain = "temp.com"
	}
	return &CredentialStore{
		byEmail:     make(map[string]*account),
		tokens:      make(map[string]string),
		hasher:      h,
		signer:      s,
		emailDomain: emailDomain,
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *CredentialStore) SignInWithPassword(ctx context.Context, email, pw string) (domain.AuthSession, error) {
	email = normalizeEmail(email)

	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.byEmail[email]
	if !ok || !c.hasher.Matches(a.hash, pw) {
		return domain.AuthSession{}, domain.ErrInvalidCredentials()
	}
	return c.openSessionLocked(a)
}

func (c *CredentialStore) SignUp(ctx context.Context, email, pw string, metadata map[string]string) (domain.AuthSession, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.AuthSession{}, domain.ErrMissingField("email")
	}
	hash, err := c.hasher.Hash(pw)
	if err != nil {
		return domain.AuthSession{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byEmail[email]; exists {
		return domain.AuthSession{}, domain.ErrAccountCreateFailed(nil)
	}
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	a := &account{id: uuid.NewString(), email: email, hash: hash, meta: meta}
	c.byEmail[email] = a
	return c.openSessionLocked(a)
}

func (c *CredentialStore) SignOut(ctx context.Context, accessToken string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, accessToken)
	return nil
}

// CallPasswordReset answers with the same payload shapes as the hosted procedure.
func (c *CredentialStore) CallPasswordReset(ctx context.Context, p password.ResetParams) (json.RawMessage, error) {
	email := domain.MemberEmail(p.MemberNumber, c.emailDomain)
	hash, err := c.hasher.Hash(p.NewPassword)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.byEmail[email]
	if !ok {
		return payload(map[string]any{"success": false, "error": "Member not found", "code": "member_not_found"})
	}
	now := c.now()
	if now.Before(a.lockedUntil) {
		return payload(map[string]any{
			"success":      false,
			"error":        "Too many failed attempts. Please try again later.",
			"code":         "account_locked",
			"locked_until": a.lockedUntil.UTC().Format(time.RFC3339),
		})
	}

	if p.CurrentPassword != "" && !c.hasher.Matches(a.hash, p.CurrentPassword) {
		a.failed++
		if a.failed >= maxFailedResets {
			a.lockedUntil = now.Add(resetLockout)
			a.failed = 0
		}
		return payload(map[string]any{"success": false, "error": "Current password is incorrect", "code": "invalid_current_password"})
	}

	a.hash = hash
	a.failed = 0
	// a reset ends every open session of the account
	for tok, uid := range c.tokens {
		if uid == a.id {
			delete(c.tokens, tok)
		}
	}
	return payload(map[string]any{"success": true, "message": "Password updated successfully"})
}

// ActiveSessions counts open access tokens for an account; used by tests and dev tooling.
func (c *CredentialStore) ActiveSessions(email string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.byEmail[normalizeEmail(email)]
	if !ok {
		return 0
	}
	n := 0
	for _, uid := range c.tokens {
		if uid == a.id {
			n++
		}
	}
	return n
}

// Provision creates an account with a fixed id, replacing any existing one.
func (c *CredentialStore) Provision(id, email, pw string) error {
	hash, err := c.hasher.Hash(pw)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byEmail[normalizeEmail(email)] = &account{id: id, email: normalizeEmail(email), hash: hash, meta: map[string]string{}}
	return nil
}

func (c *CredentialStore) openSessionLocked(a *account) (domain.AuthSession, error) {
	at, err := c.signer.SignAccessToken(a.id, a.email, accessTokenTTL)
	if err != nil {
		return domain.AuthSession{}, err
	}
	rt, err := newOpaqueToken(32)
	if err != nil {
		return domain.AuthSession{}, domain.ErrRandomFailed(err)
	}
	c.tokens[at] = a.id
	return domain.AuthSession{
		AccessToken:  at,
		RefreshToken: rt,
		ExpiresIn:    int(accessTokenTTL.Seconds()),
		User:         &domain.AuthUser{ID: a.id, Email: a.email},
	}, nil
}

func payload(v map[string]any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
