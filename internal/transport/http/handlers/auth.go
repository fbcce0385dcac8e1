package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/application/password"
	"github.com/imedia765/a-051853/internal/audit"
	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/infrastructure/security"
	"github.com/imedia765/a-051853/internal/logger"
	"github.com/imedia765/a-051853/internal/metrics"
	"github.com/imedia765/a-051853/internal/transport/http/dto"
	"github.com/imedia765/a-051853/internal/transport/http/middleware"
	"github.com/imedia765/a-051853/internal/transport/http/response"
)

type AuthHandler struct {
	members   *member.Service
	passwords *password.Orchestrator
	audit     *audit.Logger

	sessionTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(members *member.Service, passwords *password.Orchestrator, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		members:       members,
		passwords:     passwords,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) WithAudit(a *audit.Logger) *AuthHandler {
	h.audit = a
	return h
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.members.Login(r.Context(), member.LoginInput{
		MemberNumber: req.MemberNumber,
		Password:     req.Password,
		IPAddress:    middleware.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	metrics.RecordLogin(err == nil, req.Password == "")
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	security.SetSession(w, res.Session.ID, h.sessionTTL, h.secureCookies)
	response.OK(w, dto.NewLoginData(res))
}

// Logout is idempotent: a missing or stale cookie still gets a 204.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid, err := security.ReadSession(r); err == nil && sid != "" {
		if err := h.members.Logout(r.Context(), sid); err != nil {
			logger.WithCtx(r.Context()).Warn().Err(err).Msg("logout_failed")
		}
	}
	security.ClearSession(w, h.secureCookies)
	response.NoContent(w)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrSessionMissing())
		return
	}
	p, err := h.members.Me(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewMeData(p))
}

// ChangePassword runs the full change flow. On success every session of the member
// has ended, so the cookie goes too and the client follows redirect_to.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrSessionMissing())
		return
	}

	var req dto.ChangePasswordRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	platform := req.Platform
	if platform == "" {
		platform = strings.Trim(r.Header.Get("Sec-CH-UA-Platform"), `"`)
	}
	language := req.Language
	if language == "" {
		language = primaryLanguage(r.Header.Get("Accept-Language"))
	}

	out, err := h.passwords.ChangePassword(r.Context(), password.Request{
		MemberNumber:    id.Session.MemberNumber,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
		FirstTimeLogin:  id.Session.FirstTimeLogin,
		AccessToken:     id.Session.AccessToken,
		SessionID:       id.Session.ID,
		IPAddress:       middleware.ClientIP(r),
		UserAgent:       r.UserAgent(),
		Platform:        platform,
		Language:        language,
	})
	if err != nil {
		code := "unexpected_error"
		var de *domain.Error
		if errors.As(err, &de) {
			code = de.Code
		}
		h.audit.PasswordChangeFailed(r.Context(), id.Session.MemberNumber, code)
		response.WriteError(w, r, err)
		return
	}

	h.audit.PasswordChanged(r.Context(), id.Session.MemberNumber, out.Reauthenticated)
	security.ClearSession(w, h.secureCookies)
	response.OK(w, dto.NewPasswordChangeData(out))
}

// primaryLanguage returns the first tag of an Accept-Language header.
func primaryLanguage(h string) string {
	first := strings.TrimSpace(strings.SplitN(h, ",", 2)[0])
	return strings.TrimSpace(strings.SplitN(first, ";", 2)[0])
}
