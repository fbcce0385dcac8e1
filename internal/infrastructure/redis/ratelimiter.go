package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// incrWindow bumps the counter, arms the expiry on the first hit and
// returns {count, pttl}.
var incrWindow = goredis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// FixedWindowLimiter throttles login and password-change attempts across
// replicas. A window opens on the first hit for a key.
type FixedWindowLimiter struct {
	rdb *goredis.Client
}

func NewFixedWindowLimiter(c *Client) *FixedWindowLimiter {
	return &FixedWindowLimiter{rdb: c.raw()}
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Count      int
	RetryAfter time.Duration
}

func allowAll(limit int) Decision {
	return Decision{Allowed: true, Limit: limit, Remaining: limit}
}

// Allow records one hit for key. A non-positive limit or a limiter without
// Redis lets everything through.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 || l == nil || l.rdb == nil {
		return allowAll(limit), nil
	}
	if window <= 0 {
		window = time.Minute
	}

	vals, err := incrWindow.Run(ctx, l.rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(vals) != 2 {
		return Decision{}, fmt.Errorf("rate limit %s: script returned %d values", key, len(vals))
	}
	count, ttl := int(vals[0]), time.Duration(vals[1])*time.Millisecond

	d := Decision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(0, limit-count),
		Count:     count,
	}
	if !d.Allowed {
		d.RetryAfter = window
		if ttl > 0 {
			d.RetryAfter = ttl
		}
	}
	return d, nil
}
