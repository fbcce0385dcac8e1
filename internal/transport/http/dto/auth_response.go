package dto

import (
	"time"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/application/password"
	"github.com/imedia765/a-051853/internal/domain"
)

type LoginData struct {
	Member         MemberView `json:"member"`
	Roles          []string   `json:"roles"`
	PrimaryRole    string     `json:"primary_role,omitempty"`
	FirstTimeLogin bool       `json:"first_time_login"`
	ExpiresAt      time.Time  `json:"expires_at"`
}

func NewLoginData(res member.LoginResult) LoginData {
	return LoginData{
		Member:         NewMemberView(res.Member),
		Roles:          roleNames(res.Roles),
		PrimaryRole:    string(res.PrimaryRole),
		FirstTimeLogin: res.Session.FirstTimeLogin,
		ExpiresAt:      res.Session.ExpiresAt,
	}
}

type MeData struct {
	Member         MemberView         `json:"member"`
	Roles          []string           `json:"roles"`
	PrimaryRole    string             `json:"primary_role,omitempty"`
	Permissions    domain.Permissions `json:"permissions"`
	Tabs           []string           `json:"tabs"`
	FirstTimeLogin bool               `json:"first_time_login"`
}

func NewMeData(p member.Profile) MeData {
	tabs := make([]string, 0, len(p.Tabs))
	for _, t := range p.Tabs {
		tabs = append(tabs, string(t))
	}
	return MeData{
		Member:         NewMemberView(p.Member),
		Roles:          roleNames(p.Roles),
		PrimaryRole:    string(p.PrimaryRole),
		Permissions:    p.Permissions,
		Tabs:           tabs,
		FirstTimeLogin: p.FirstTimeLogin,
	}
}

// PasswordChangeData is returned for successful and failed changes alike.
type PasswordChangeData struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Reauthenticated bool   `json:"reauthenticated"`
	RedirectTo      string `json:"redirect_to,omitempty"`
}

func NewPasswordChangeData(out password.Outcome) PasswordChangeData {
	return PasswordChangeData{
		Success:         out.Success,
		Message:         out.Message,
		Reauthenticated: out.Reauthenticated,
		RedirectTo:      out.RedirectTo,
	}
}

type TabAccessData struct {
	Tab     string `json:"tab"`
	Allowed bool   `json:"allowed"`
}

func roleNames(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
