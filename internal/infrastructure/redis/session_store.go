package redis

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/imedia765/a-051853/internal/domain"
)

// SessionStore keeps dashboard sessions as JSON under sess:<opaque id> with the session TTL.
type SessionStore struct {
	rdb        *goredis.Client
	prefix     string
	tokenBytes int
}

func NewSessionStore(c *Client) *SessionStore {
	return &SessionStore{
		rdb:        c.raw(),
		prefix:     "sess:",
		tokenBytes: 32,
	}
}

func (s *SessionStore) Create(ctx context.Context, sess domain.DashboardSession, ttl time.Duration) (domain.DashboardSession, error) {
	if strings.TrimSpace(sess.MemberID) == "" {
		return domain.DashboardSession{}, domain.ErrMissingField("member_id")
	}
	if s.rdb == nil {
		return domain.DashboardSession{}, domain.ErrRedisUnavailable(errors.New("redis session store not configured"))
	}

	id, err := s.newOpaqueToken()
	if err != nil {
		return domain.DashboardSession{}, domain.ErrRandomFailed(err)
	}
	sess.ID = id

	b, err := json.Marshal(sess)
	if err != nil {
		return domain.DashboardSession{}, domain.ErrInternal(err)
	}
	// NX: a colliding id never overwrites a live session
	ok, err := s.rdb.SetNX(ctx, s.prefix+id, b, ttl).Result()
	if err != nil {
		return domain.DashboardSession{}, domain.ErrRedisUnavailable(err)
	}
	if !ok {
		return domain.DashboardSession{}, domain.ErrInternal(errors.New("session id collision"))
	}
	return sess, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.DashboardSession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.DashboardSession{}, domain.ErrSessionInvalid()
	}
	if s.rdb == nil {
		return domain.DashboardSession{}, domain.ErrRedisUnavailable(errors.New("redis session store not configured"))
	}

	raw, err := s.rdb.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.DashboardSession{}, domain.ErrSessionInvalid()
		}
		return domain.DashboardSession{}, domain.ErrRedisUnavailable(err)
	}

	var sess domain.DashboardSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		// unreadable entries are dropped rather than served
		_ = s.rdb.Del(ctx, s.prefix+id).Err()
		return domain.DashboardSession{}, domain.ErrSessionInvalid()
	}
	return sess, nil
}

// Delete is idempotent.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if s.rdb == nil {
		return domain.ErrRedisUnavailable(errors.New("redis session store not configured"))
	}
	if err := s.rdb.Del(ctx, s.prefix+id).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

func (s *SessionStore) newOpaqueToken() (string, error) {
	b := make([]byte, s.tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
