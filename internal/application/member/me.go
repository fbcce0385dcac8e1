package member

import (
	"context"

	"github.com/imedia765/a-051853/internal/domain"
)

type Profile struct {
	Member         domain.Member
	Roles          []domain.Role
	PrimaryRole    domain.Role
	Permissions    domain.Permissions
	Tabs           []domain.Tab
	FirstTimeLogin bool
}

func (s *Service) Me(ctx context.Context, id Identity) (Profile, error) {
	m, err := s.members.GetByID(ctx, id.Session.MemberID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Member:         m,
		Roles:          id.Roles,
		PrimaryRole:    domain.PrimaryRole(id.Roles),
		Permissions:    domain.PermissionsFor(id.Roles),
		Tabs:           domain.VisibleTabs(id.Roles),
		FirstTimeLogin: id.Session.FirstTimeLogin,
	}, nil
}
