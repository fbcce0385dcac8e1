package password

import (
	"strings"

	"github.com/imedia765/a-051853/internal/domain"
)

// Request is one password change submission.
type Request struct {
	MemberNumber    string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
	FirstTimeLogin  bool

	// AccessToken is the caller's credential store session, SessionID their dashboard session.
	AccessToken string
	SessionID   string

	IPAddress string
	UserAgent string
	Platform  string
	Language  string
}

// Validate runs the pre-flight checks. Nothing reaches the backend unless it passes.
func (r Request) Validate() error {
	if strings.TrimSpace(r.MemberNumber) == "" {
		return domain.ErrMissingField("member_number")
	}
	if !r.FirstTimeLogin && r.CurrentPassword == "" {
		return domain.ErrCurrentPasswordRequired()
	}
	if r.NewPassword == "" {
		return domain.ErrMissingField("new_password")
	}
	if r.ConfirmPassword == "" {
		return domain.ErrMissingField("confirm_password")
	}
	if r.NewPassword != r.ConfirmPassword {
		return domain.ErrPasswordsMismatch()
	}
	return domain.CheckPasswordPolicy(r.NewPassword)
}
