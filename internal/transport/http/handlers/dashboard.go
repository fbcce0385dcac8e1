package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/transport/http/dto"
	"github.com/imedia765/a-051853/internal/transport/http/middleware"
	"github.com/imedia765/a-051853/internal/transport/http/response"
)

type DashboardHandler struct {
	members *member.Service
}

func NewDashboardHandler(members *member.Service) *DashboardHandler {
	return &DashboardHandler{members: members}
}

// Tab answers whether the caller may open a dashboard section. Unknown tabs are simply not allowed.
func (h *DashboardHandler) Tab(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrSessionMissing())
		return
	}
	tab := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "tab")))
	response.OK(w, dto.TabAccessData{Tab: tab, Allowed: id.Can(domain.Tab(tab))})
}

func (h *DashboardHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.members.ListMembers)
}

func (h *DashboardHandler) FamilyMembers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.members.FamilyMembers)
}

type listFunc func(ctx context.Context, id member.Identity, f member.MemberFilter) (member.MembersPage, error)

func (h *DashboardHandler) list(w http.ResponseWriter, r *http.Request, fn listFunc) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrSessionMissing())
		return
	}

	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	offset, err := intParam(q.Get("offset"), "offset")
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	page, err := fn(r.Context(), id, member.MemberFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewMembersData(page))
}

func (h *DashboardHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrSessionMissing())
		return
	}

	memberID := strings.TrimSpace(chi.URLParam(r, "id"))
	if memberID == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	var req dto.ProfileUpdateRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	m, err := h.members.UpdateProfile(r.Context(), id, memberID, req.ToDomain())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewMemberView(m))
}

// intParam parses an optional non-negative query parameter.
func intParam(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.ErrInvalidField(name, "must be a non-negative integer")
	}
	return n, nil
}
