package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const releaseLua = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker is a single-instance Redis lease: SET NX PX to take it, compare-and-delete to give it back.
type Locker struct {
	rdb    *goredis.Client
	prefix string
}

func NewLocker(c *Client) *Locker {
	return &Locker{rdb: c.raw(), prefix: "lock:"}
}

func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.rdb == nil {
		return "", false, errors.New("redis locker not configured")
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", false, err
	}
	tok := hex.EncodeToString(b)

	ok, err := l.rdb.SetNX(ctx, l.prefix+key, tok, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return tok, true, nil
}

func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l.rdb == nil || token == "" {
		return nil
	}
	return l.rdb.Eval(ctx, releaseLua, []string{l.prefix + key}, token).Err()
}
