package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/imedia765/a-051853/internal/domain"
)

type sessionEntry struct {
	sess      domain.DashboardSession
	expiresAt time.Time
}

// SessionStore keeps dashboard sessions in process memory.
type SessionStore struct {
	mu   sync.RWMutex
	byID map[string]sessionEntry
	now  func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{byID: make(map[string]sessionEntry), now: time.Now}
}

func (s *SessionStore) Create(ctx context.Context, sess domain.DashboardSession, ttl time.Duration) (domain.DashboardSession, error) {
	if strings.TrimSpace(sess.MemberID) == "" {
		return domain.DashboardSession{}, domain.ErrMissingField("member_id")
	}
	id, err := newOpaqueToken(32)
	if err != nil {
		return domain.DashboardSession{}, domain.ErrRandomFailed(err)
	}
	sess.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = sessionEntry{sess: sess, expiresAt: s.now().Add(ttl)}
	return sess, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.DashboardSession, error) {
	s.mu.RLock()
	e, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return domain.DashboardSession{}, domain.ErrSessionInvalid()
	}
	if s.now().After(e.expiresAt) {
		_ = s.Delete(ctx, id)
		return domain.DashboardSession{}, domain.ErrSessionInvalid()
	}
	return e.sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}
