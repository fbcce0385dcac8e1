package dto

import (
	"strings"

	"github.com/imedia765/a-051853/internal/domain"
)

type LoginRequest struct {
	MemberNumber string `json:"member_number" validate:"required,max=32,member_number"`
	// Password may be empty on a member's first login.
	Password string `json:"password" validate:"omitempty,max=128"`
}

func (r *LoginRequest) Validate() error {
	r.MemberNumber = domain.NormalizeMemberNumber(r.MemberNumber)
	return check(r)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"omitempty,max=128"`
	NewPassword     string `json:"new_password" validate:"omitempty,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"omitempty,max=128"`

	// Optional client diagnostics forwarded with the reset.
	Platform string `json:"platform" validate:"omitempty,max=64"`
	Language string `json:"language" validate:"omitempty,max=35"`
}

// Validate only checks shape. Which password field is missing or wrong is
// decided by password.Request.Validate so the order lives in one place.
func (r *ChangePasswordRequest) Validate() error {
	r.Platform = strings.TrimSpace(r.Platform)
	r.Language = strings.TrimSpace(r.Language)
	return check(r)
}
