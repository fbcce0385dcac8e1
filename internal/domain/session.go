package domain

import (
	"fmt"
	"strings"
	"time"
)

// AuthUser is the principal the credential store returns on sign-in.
type AuthUser struct {
	ID    string
	Email string
}

// AuthSession is a session issued by the credential store.
type AuthSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         *AuthUser
}

// DashboardSession is the server-side session behind the dashboard cookie.
type DashboardSession struct {
	ID             string    `json:"id"`
	MemberID       string    `json:"member_id"`
	MemberNumber   string    `json:"member_number"`
	AuthUserID     string    `json:"auth_user_id"`
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token,omitempty"`
	FirstTimeLogin bool      `json:"first_time_login"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// NormalizeMemberNumber trims and upper-cases what members type in.
func NormalizeMemberNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// MemberEmail derives the email-shaped sign-in identifier the credential store expects.
func MemberEmail(memberNumber, domain string) string {
	return fmt.Sprintf("%s@%s", strings.ToLower(strings.TrimSpace(memberNumber)), domain)
}
