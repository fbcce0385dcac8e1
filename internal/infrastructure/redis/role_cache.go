package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/logger"
)

// CachedRoleRepo decorates a member.RoleRepo with a short-lived Redis copy of each
// user's roles. Redis errors fall through to the inner repo.
type CachedRoleRepo struct {
	inner   member.RoleRepo
	rdb     *goredis.Client
	ttl     time.Duration
	keyPref string
}

func NewCachedRoleRepo(inner member.RoleRepo, c *Client, ttl time.Duration) *CachedRoleRepo {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRoleRepo{inner: inner, rdb: c.raw(), ttl: ttl, keyPref: "roles:"}
}

func (c *CachedRoleRepo) key(uid string) string { return c.keyPref + uid }

func (c *CachedRoleRepo) RolesForUser(ctx context.Context, authUserID string) ([]domain.Role, error) {
	if c.rdb != nil {
		s, err := c.rdb.Get(ctx, c.key(authUserID)).Result()
		if err == nil {
			return decodeRoles(s), nil
		}
		if !errors.Is(err, goredis.Nil) {
			logger.WithCtx(ctx).Warn().Err(err).Msg("role_cache_read_failed")
		}
	}

	roles, err := c.inner.RolesForUser(ctx, authUserID)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		_ = c.rdb.Set(ctx, c.key(authUserID), encodeRoles(roles), c.ttl).Err()
	}
	return roles, nil
}

// Invalidate drops the cached roles of one user.
func (c *CachedRoleRepo) Invalidate(ctx context.Context, authUserID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key(authUserID)).Err()
}

// Roles are stored comma-joined; an empty string is a cached "no roles".
func encodeRoles(roles []domain.Role) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}

func decodeRoles(s string) []domain.Role {
	if s == "" {
		return nil
	}
	var out []domain.Role
	for _, p := range strings.Split(s, ",") {
		if domain.IsValidRole(p) {
			out = append(out, domain.Role(p))
		}
	}
	return out
}
