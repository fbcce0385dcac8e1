package postgres

import (
	"context"
	"database/sql"

	"github.com/imedia765/a-051853/internal/domain"
)

type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

// RolesForUser skips role names this service does not know.
func (r *RoleRepo) RolesForUser(ctx context.Context, authUserID string) ([]domain.Role, error) {
	const q = `
SELECT role::text
FROM user_roles
WHERE user_id = $1
ORDER BY role;
`
	rows, err := r.db.QueryContext(ctx, q, authUserID)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var out []domain.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		if domain.IsValidRole(role) {
			out = append(out, domain.Role(role))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}
