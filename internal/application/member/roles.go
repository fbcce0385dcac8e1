package member

import (
	"context"

	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/pkg/retry"
)

// rolesFor loads a user's roles, retrying transient failures with a constant delay.
func (s *Service) rolesFor(ctx context.Context, authUserID string) ([]domain.Role, error) {
	if authUserID == "" {
		return nil, nil
	}

	var roles []domain.Role
	policy := retry.Policy{
		MaxRetries:   s.cfg.RoleMaxRetries,
		InitialDelay: s.cfg.RoleRetryDelay,
		Multiplier:   1,
		Retryable:    transient,
	}
	err := retry.Do(ctx, policy, s.sleep, func(ctx context.Context, _ int) error {
		rs, err := s.roles.RolesForUser(ctx, authUserID)
		if err != nil {
			return err
		}
		roles = rs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roles, nil
}
