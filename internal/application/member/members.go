package member

import (
	"context"
	"strings"

	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/logger"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type MembersPage struct {
	// Collector is set when the list is scoped to the caller's collection.
	Collector *domain.Collector
	Members   []domain.Member
}

// scope narrows f to what id may see: admins see everyone, collectors their own members.
func (s *Service) scope(ctx context.Context, id Identity, f MemberFilter) (MemberFilter, *domain.Collector, error) {
	if !id.Can(domain.TabUsers) {
		return f, nil, domain.ErrTabNotAllowed(string(domain.TabUsers))
	}
	f.Limit = clampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.TrimSpace(f.Search)

	if id.IsAdmin() {
		return f, nil, nil
	}
	c, err := s.collectors.GetByMemberNumber(ctx, id.Session.MemberNumber)
	if err != nil {
		return f, nil, err
	}
	if !c.Active {
		return f, nil, domain.ErrForbidden()
	}
	f.Collector = c.Name
	return f, &c, nil
}

func (s *Service) ListMembers(ctx context.Context, id Identity, f MemberFilter) (MembersPage, error) {
	f, c, err := s.scope(ctx, id, f)
	if err != nil {
		return MembersPage{}, err
	}
	ms, err := s.members.List(ctx, f)
	if err != nil {
		return MembersPage{}, err
	}
	return MembersPage{Collector: c, Members: ms}, nil
}

// FamilyMembers lists the visible members who recorded a family member.
func (s *Service) FamilyMembers(ctx context.Context, id Identity, f MemberFilter) (MembersPage, error) {
	page, err := s.ListMembers(ctx, id, f)
	if err != nil {
		return MembersPage{}, err
	}
	out := make([]domain.Member, 0, len(page.Members))
	for _, m := range page.Members {
		if m.HasFamily() {
			out = append(out, m)
		}
	}
	page.Members = out
	return page, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id Identity, memberID string, upd domain.ProfileUpdate) (domain.Member, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return domain.Member{}, domain.ErrMissingField("id")
	}
	if upd.Empty() {
		return domain.Member{}, domain.ErrInvalidField("body", "no fields to update")
	}
	_, c, err := s.scope(ctx, id, MemberFilter{})
	if err != nil {
		return domain.Member{}, err
	}

	target, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return domain.Member{}, err
	}
	if c != nil {
		if target.Collector != c.Name {
			return domain.Member{}, domain.ErrForbidden()
		}
		// Collectors cannot hand members over to someone else.
		if upd.Collector != nil && *upd.Collector != c.Name {
			return domain.Member{}, domain.ErrInsufficientRole(string(domain.RoleAdmin))
		}
	}
	if upd.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*upd.Email))
		upd.Email = &e
	}

	updated, err := s.members.UpdateProfile(ctx, memberID, upd)
	if err != nil {
		return domain.Member{}, err
	}

	fields := changedFields(upd)
	s.audit.ProfileUpdated(ctx, memberID, id.Session.MemberNumber, fields)
	if s.pub != nil {
		evt := ProfileUpdatedEvent{
			MemberID:     memberID,
			MemberNumber: updated.MemberNumber,
			Fields:       fields,
			UpdatedBy:    id.Session.MemberNumber,
			At:           s.now().UTC(),
		}
		if perr := s.pub.PublishProfileUpdated(ctx, evt); perr != nil {
			logger.WithCtx(ctx).Warn().Err(perr).Msg("publish_profile_updated_failed")
		}
	}
	return updated, nil
}

func changedFields(u domain.ProfileUpdate) []string {
	var out []string
	add := func(name string, v *string) {
		if v != nil {
			out = append(out, name)
		}
	}
	add("email", u.Email)
	add("phone", u.Phone)
	add("address", u.Address)
	add("town", u.Town)
	add("postcode", u.Postcode)
	add("membership_type", u.MembershipType)
	add("status", u.Status)
	add("collector", u.Collector)
	return out
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return defaultPageSize
	case n > maxPageSize:
		return maxPageSize
	default:
		return n
	}
}
