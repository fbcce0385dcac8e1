package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/application/password"
	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/infrastructure/memory"
	"github.com/imedia765/a-051853/internal/infrastructure/security"
	"github.com/imedia765/a-051853/internal/transport/http/middleware"
	"github.com/imedia765/a-051853/internal/transport/http/response"
	"github.com/imedia765/a-051853/internal/transport/http/router"
)

const (
	emailDomain   = "temp.com"
	adminNumber   = "TA0001"
	adminPassword = "AdminPassword123!"
	collectorNo   = "TC0001"
	collectorPass = "CollectorPassword123!"
)

type harness struct {
	h        http.Handler
	creds    *memory.CredentialStore
	members  *memory.MemberRepo
	sessions *memory.SessionStore
}

func noSleep(context.Context, time.Duration) error { return nil }

func newHarness(t *testing.T) *harness {
	t.Helper()

	signer := security.NewHS256Signer("handler-test-secret", "test")
	creds := memory.NewCredentialStore(security.NewBcryptHasher(bcrypt.MinCost), signer, emailDomain)
	members := memory.NewMemberRepo()
	roles := memory.NewRoleRepo()
	collectors := memory.NewCollectorRepo()
	logs := memory.NewLogRepo()
	sessions := memory.NewSessionStore()
	memory.Seed(memory.SeedTargets{
		Members: members, Roles: roles, Collectors: collectors, Logs: logs, Creds: creds, EmailDomain: emailDomain,
	})

	svc := member.NewService(members, roles, collectors, logs, sessions, creds, member.Config{
		EmailDomain: emailDomain,
		SessionTTL:  time.Hour,
	}).WithVerifier(signer.Verifier()).WithSleeper(noSleep)

	reauth := password.NewReauthenticator(creds, 3, time.Millisecond).WithSleeper(noSleep)
	orch := password.NewOrchestrator(creds, reauth, password.NewTeardown(creds, sessions, "/login"), password.Config{
		EmailDomain: emailDomain,
	}).WithSleeper(noSleep).WithGuard(memory.NewLocker())

	h, err := router.New(router.Deps{
		Health:          NewHealthHandler(nil),
		Auth:            NewAuthHandler(svc, orch, time.Hour, false),
		Dashboard:       NewDashboardHandler(svc),
		System:          NewSystemHandler(svc),
		SessionMW:       middleware.Session(svc, response.WriteError),
		UsersTabMW:      middleware.RequireTab(domain.TabUsers, response.WriteError),
		SystemTabMW:     middleware.RequireTab(domain.TabSystem, response.WriteError),
		LoginLimitMW:    middleware.RateLimit(nil, middleware.RouteLimit{Name: "login", Limit: 5, Window: time.Minute}, response.WriteError),
		PasswordLimitMW: middleware.RateLimit(nil, middleware.RouteLimit{Name: "password_change", Limit: 5, Window: time.Minute}, response.WriteError),
	})
	require.NoError(t, err)

	return &harness{h: h, creds: creds, members: members, sessions: sessions}
}

func (hs *harness) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	hs.h.ServeHTTP(rr, req)
	return rr
}

// login signs in and returns the session cookie.
func (hs *harness) login(t *testing.T, number, pw string) *http.Cookie {
	t.Helper()
	rr := hs.do(t, http.MethodPost, "/auth/v1/login", map[string]string{"member_number": number, "password": pw}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	c := readCookie(rr, security.SessionCookieName)
	require.NotNil(t, c, "expected session cookie")
	return c
}

func readCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// decodeData unwraps {"data": ...} into out.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out), rr.Body.String())
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body.Error.Code
}
