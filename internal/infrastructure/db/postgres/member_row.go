package postgres

import (
	"database/sql"
	"time"

	"github.com/imedia765/a-051853/internal/domain"
)

// memberColumns is shared by every query that yields a full member.
const memberColumns = `id, member_number, full_name, COALESCE(email,''), COALESCE(phone,''), COALESCE(address,''),
COALESCE(town,''), COALESCE(postcode,''), COALESCE(membership_type,''), COALESCE(status,''), COALESCE(collector,''),
auth_user_id, COALESCE(family_member_name,''), COALESCE(family_member_relationship,''),
COALESCE(family_member_dob::text,''), COALESCE(family_member_gender,''), created_at, updated_at`

type memberRow struct {
	ID             string
	MemberNumber   string
	FullName       string
	Email          string
	Phone          string
	Address        string
	Town           string
	Postcode       string
	MembershipType string
	Status         string
	Collector      string
	AuthUserID     sql.NullString

	FamilyName         string
	FamilyRelationship string
	FamilyDOB          string
	FamilyGender       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(s rowScanner) (memberRow, error) {
	var r memberRow
	err := s.Scan(
		&r.ID,
		&r.MemberNumber,
		&r.FullName,
		&r.Email,
		&r.Phone,
		&r.Address,
		&r.Town,
		&r.Postcode,
		&r.MembershipType,
		&r.Status,
		&r.Collector,
		&r.AuthUserID,
		&r.FamilyName,
		&r.FamilyRelationship,
		&r.FamilyDOB,
		&r.FamilyGender,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func (r memberRow) toDomain() domain.Member {
	return domain.Member{
		ID:                       r.ID,
		MemberNumber:             r.MemberNumber,
		FullName:                 r.FullName,
		Email:                    r.Email,
		Phone:                    r.Phone,
		Address:                  r.Address,
		Town:                     r.Town,
		Postcode:                 r.Postcode,
		MembershipType:           r.MembershipType,
		Status:                   r.Status,
		Collector:                r.Collector,
		AuthUserID:               r.AuthUserID.String,
		FamilyMemberName:         r.FamilyName,
		FamilyMemberRelationship: r.FamilyRelationship,
		FamilyMemberDOB:          r.FamilyDOB,
		FamilyMemberGender:       r.FamilyGender,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}
}
