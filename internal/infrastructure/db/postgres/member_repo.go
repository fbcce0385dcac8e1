package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/domain"
)

type MemberRepo struct {
	db *sql.DB
}

func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

func errMemberNotFound() *domain.Error {
	return domain.New(domain.KindNotFound, "member_not_found", "member not found")
}

func (r *MemberRepo) getOne(ctx context.Context, where string, arg any) (domain.Member, error) {
	q := `SELECT ` + memberColumns + ` FROM members WHERE ` + where + ` LIMIT 1;`
	row, err := scanMember(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Member{}, errMemberNotFound()
		}
		return domain.Member{}, domain.ErrDBUnavailable(err)
	}
	return row.toDomain(), nil
}

func (r *MemberRepo) GetByNumber(ctx context.Context, number string) (domain.Member, error) {
	number = domain.NormalizeMemberNumber(number)
	if number == "" {
		return domain.Member{}, domain.ErrMissingField("member_number")
	}
	return r.getOne(ctx, "member_number = $1", number)
}

func (r *MemberRepo) GetByID(ctx context.Context, id string) (domain.Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Member{}, domain.ErrMissingField("id")
	}
	// ids are uuids; anything else cannot match a row
	if _, err := uuid.Parse(id); err != nil {
		return domain.Member{}, errMemberNotFound()
	}
	return r.getOne(ctx, "id = $1", id)
}

func (r *MemberRepo) LinkAuthUser(ctx context.Context, memberID, authUserID string) error {
	if strings.TrimSpace(memberID) == "" {
		return domain.ErrMissingField("id")
	}
	if strings.TrimSpace(authUserID) == "" {
		return domain.ErrMissingField("auth_user_id")
	}

	const q = `
UPDATE members
SET auth_user_id = $2,
    updated_at = NOW()
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, memberID, authUserID)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errMemberNotFound()
	}
	return nil
}

func (r *MemberRepo) List(ctx context.Context, f member.MemberFilter) ([]domain.Member, error) {
	q := `SELECT ` + memberColumns + `
FROM members
WHERE ($1 = '' OR collector = $1)
  AND ($2 = '' OR full_name ILIKE '%' || $2 || '%' OR member_number ILIKE '%' || $2 || '%')
ORDER BY member_number ASC
LIMIT $3 OFFSET $4;`

	rows, err := r.db.QueryContext(ctx, q, f.Collector, f.Search, f.Limit, f.Offset)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := make([]domain.Member, 0, f.Limit)
	for rows.Next() {
		row, err := scanMember(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

// UpdateProfile writes only the fields set in upd and returns the stored row.
func (r *MemberRepo) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (domain.Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Member{}, domain.ErrMissingField("id")
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.Member{}, errMemberNotFound()
	}

	var (
		sets []string
		args = []any{id}
	)
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("email", upd.Email)
	add("phone", upd.Phone)
	add("address", upd.Address)
	add("town", upd.Town)
	add("postcode", upd.Postcode)
	add("membership_type", upd.MembershipType)
	add("status", upd.Status)
	add("collector", upd.Collector)
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	q := `UPDATE members SET ` + strings.Join(sets, ", ") + `, updated_at = NOW()
WHERE id = $1
RETURNING ` + memberColumns + `;`

	row, err := scanMember(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Member{}, errMemberNotFound()
		}
		return domain.Member{}, domain.ErrDBUnavailable(err)
	}
	return row.toDomain(), nil
}
