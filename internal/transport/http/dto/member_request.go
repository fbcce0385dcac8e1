package dto

import (
	"strings"

	"github.com/imedia765/a-051853/internal/domain"
)

// ProfileUpdateRequest is a PATCH body; absent fields stay unchanged.
type ProfileUpdateRequest struct {
	Email          *string `json:"email" validate:"omitempty,email,max=255"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	Address        *string `json:"address" validate:"omitempty,max=255"`
	Town           *string `json:"town" validate:"omitempty,max=100"`
	Postcode       *string `json:"postcode" validate:"omitempty,max=16"`
	MembershipType *string `json:"membership_type" validate:"omitempty,max=50"`
	Status         *string `json:"status" validate:"omitempty,oneof=active inactive pending suspended"`
	Collector      *string `json:"collector" validate:"omitempty,max=100"`
}

func (r *ProfileUpdateRequest) Validate() error {
	for _, p := range []*string{r.Email, r.Phone, r.Address, r.Town, r.Postcode, r.MembershipType, r.Status, r.Collector} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	if r.Status != nil {
		s := strings.ToLower(*r.Status)
		r.Status = &s
	}
	return check(r)
}

func (r ProfileUpdateRequest) ToDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		Town:           r.Town,
		Postcode:       r.Postcode,
		MembershipType: r.MembershipType,
		Status:         r.Status,
		Collector:      r.Collector,
	}
}
