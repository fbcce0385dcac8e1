package bootstrap

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedia765/a-051853/internal/config"
	"github.com/imedia765/a-051853/internal/infrastructure/redis"
	"github.com/imedia765/a-051853/internal/transport/http/router"
)

func devConfig() *config.Config {
	return &config.Config{
		Env:                 "dev",
		HTTPAddr:            ":0",
		AuthEmailDomain:     "temp.com",
		SessionTTL:          time.Hour,
		RoleCacheTTL:        time.Minute,
		ReauthMaxRetries:    0,
		ChangeGuardTTL:      time.Second,
		CredStoreJWTSecret:  "wire-test-secret",
		PasswordSettleDelay: 0,
	}
}

func testDeps(cfg *config.Config) Deps {
	return Deps{
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
		NewDB: func(string, bool) (*sql.DB, error) {
			return nil, errors.New("no database in unit tests")
		},
		NewRedis: redis.New,
		NewPublisher: func(string, string) (EventPublisher, error) {
			return nil, errors.New("broker down")
		},
		NewRouter: router.New,
	}
}

func TestNewServer_ConfigLoadFails(t *testing.T) {
	deps := testDeps(nil)
	deps.LoadConfig = func() (*config.Config, error) { return nil, errors.New("missing env") }

	srv, cleanup, err := NewServerWithDeps(deps)
	require.Error(t, err)
	assert.Nil(t, srv)
	assert.Nil(t, cleanup)
}

func TestNewServer_DBConnectFails(t *testing.T) {
	cfg := devConfig()
	cfg.DBAddr = "postgres://invalid:5432/db"

	srv, cleanup, err := NewServerWithDeps(testDeps(cfg))
	require.Error(t, err)
	assert.Nil(t, srv)
	assert.Nil(t, cleanup)
}

func TestNewServer_PublisherRequiredOutsideDev(t *testing.T) {
	cfg := devConfig()
	cfg.Env = "prod"

	_, _, err := NewServerWithDeps(testDeps(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewServer_DevFallbacksServeSeededLogin(t *testing.T) {
	cfg := devConfig()
	cfg.RedisAddr = "127.0.0.1:1"

	srv, cleanup, err := NewServerWithDeps(testDeps(cfg))
	require.NoError(t, err)
	defer cleanup()

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code, "no probes registered when everything is in memory")

	body, _ := json.Marshal(map[string]string{"member_number": "TA0001", "password": "AdminPassword123!"})
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/v1/login", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"admin"`)
}

func TestNewServer_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := devConfig()
	cfg.RedisAddr = mr.Addr()

	srv, cleanup, err := NewServerWithDeps(testDeps(cfg))
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"redis":"up"`)

	body, _ := json.Marshal(map[string]string{"member_number": "TC0001", "password": "CollectorPassword123!"})
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/v1/login", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotEmpty(t, mr.Keys(), "session should live in redis")

	cleanup()
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
