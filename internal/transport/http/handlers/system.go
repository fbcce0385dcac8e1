package handlers

import (
	"net/http"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/transport/http/dto"
	"github.com/imedia765/a-051853/internal/transport/http/middleware"
	"github.com/imedia765/a-051853/internal/transport/http/response"
)

type SystemHandler struct {
	members *member.Service
}

func NewSystemHandler(members *member.Service) *SystemHandler {
	return &SystemHandler{members: members}
}

func (h *SystemHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrSessionMissing())
		return
	}
	limit, err := intParam(r.URL.Query().Get("limit"), "limit")
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logs, err := h.members.AuditLogs(r.Context(), id, limit)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewAuditLogViews(logs))
}

func (h *SystemHandler) MonitoringLogs(w http.ResponseWriter, r *http.Request) {
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

	logs, err := h.members.MonitoringLogs(r.Context(), id, q.Get("severity"), limit)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewMonitoringLogViews(logs))
}
