package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/imedia765/a-051853/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
}

type DashboardHandler interface {
	Tab(w http.ResponseWriter, r *http.Request)
	ListMembers(w http.ResponseWriter, r *http.Request)
	FamilyMembers(w http.ResponseWriter, r *http.Request)
	UpdateMember(w http.ResponseWriter, r *http.Request)
}

type SystemHandler interface {
	AuditLogs(w http.ResponseWriter, r *http.Request)
	MonitoringLogs(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health    HealthHandler
	Auth      AuthHandler
	Dashboard DashboardHandler
	System    SystemHandler

	// Metrics serves /metrics and Docs serves /openapi.json; both optional.
	Metrics http.Handler
	Docs    http.Handler

	SessionMW   func(http.Handler) http.Handler
	UsersTabMW  func(http.Handler) http.Handler
	SystemTabMW func(http.Handler) http.Handler

	LoginLimitMW    func(http.Handler) http.Handler
	PasswordLimitMW func(http.Handler) http.Handler

	// OriginMW guards the cookie-authenticated API groups; optional.
	OriginMW func(http.Handler) http.Handler
	HSTS     bool

	RequestTimeout time.Duration
}

func New(deps Deps) (http.Handler, error) {
	switch {
	case deps.Health == nil:
		return nil, fmt.Errorf("nil Health handler")
	case deps.Auth == nil:
		return nil, fmt.Errorf("nil Auth handler")
	case deps.Dashboard == nil:
		return nil, fmt.Errorf("nil Dashboard handler")
	case deps.System == nil:
		return nil, fmt.Errorf("nil System handler")
	case deps.SessionMW == nil:
		return nil, fmt.Errorf("nil Session middleware")
	case deps.UsersTabMW == nil || deps.SystemTabMW == nil:
		return nil, fmt.Errorf("nil tab middleware")
	}
	if deps.LoginLimitMW == nil {
		deps.LoginLimitMW = passthrough
	}
	if deps.PasswordLimitMW == nil {
		deps.PasswordLimitMW = passthrough
	}
	if deps.OriginMW == nil {
		deps.OriginMW = passthrough
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(deps.HSTS))
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(deps.RequestTimeout))

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if deps.Docs != nil {
		r.Method(http.MethodGet, "/openapi.json", deps.Docs)
	}

	r.Route("/auth/v1", func(r chi.Router) {
		r.Use(deps.OriginMW)
		r.With(deps.LoginLimitMW).Post("/login", deps.Auth.Login)
		r.Post("/logout", deps.Auth.Logout)
		r.With(deps.SessionMW).Get("/me", deps.Auth.Me)
		r.With(deps.SessionMW, deps.PasswordLimitMW).Post("/password/change", deps.Auth.ChangePassword)
	})

	r.Route("/dashboard/v1", func(r chi.Router) {
		r.Use(deps.OriginMW)
		r.Use(deps.SessionMW)
		r.Get("/tabs/{tab}", deps.Dashboard.Tab)

		r.Group(func(r chi.Router) {
			r.Use(deps.UsersTabMW)
			r.Get("/members", deps.Dashboard.ListMembers)
			r.Get("/members/family", deps.Dashboard.FamilyMembers)
			r.Patch("/members/{id}", deps.Dashboard.UpdateMember)
		})

		r.Route("/system", func(r chi.Router) {
			r.Use(deps.SystemTabMW)
			r.Get("/audit-logs", deps.System.AuditLogs)
			r.Get("/monitoring-logs", deps.System.MonitoringLogs)
		})
	})

	return r, nil
}

func passthrough(next http.Handler) http.Handler { return next }
