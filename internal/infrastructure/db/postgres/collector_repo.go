package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/imedia765/a-051853/internal/domain"
)

type CollectorRepo struct {
	db *sql.DB
}

func NewCollectorRepo(db *sql.DB) *CollectorRepo {
	return &CollectorRepo{db: db}
}

func (r *CollectorRepo) GetByMemberNumber(ctx context.Context, number string) (domain.Collector, error) {
	const q = `
SELECT id, name, member_number, active
FROM members_collectors
WHERE member_number = $1
LIMIT 1;
`
	var c domain.Collector
	err := r.db.QueryRowContext(ctx, q, domain.NormalizeMemberNumber(number)).
		Scan(&c.ID, &c.Name, &c.MemberNumber, &c.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Collector{}, domain.ErrCollectorNotFound()
		}
		return domain.Collector{}, domain.ErrDBUnavailable(err)
	}
	return c, nil
}
