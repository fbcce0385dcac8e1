package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/application/password"
	"github.com/imedia765/a-051853/internal/audit"
	"github.com/imedia765/a-051853/internal/config"
	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/infrastructure/credstore"
	"github.com/imedia765/a-051853/internal/infrastructure/db/postgres"
	"github.com/imedia765/a-051853/internal/infrastructure/memory"
	rabbitmq_pub "github.com/imedia765/a-051853/internal/infrastructure/messaging/rabbitmq"
	"github.com/imedia765/a-051853/internal/infrastructure/redis"
	"github.com/imedia765/a-051853/internal/infrastructure/security"
	"github.com/imedia765/a-051853/internal/logger"
	"github.com/imedia765/a-051853/internal/metrics"
	"github.com/imedia765/a-051853/internal/transport/http/docs"
	http_handlers "github.com/imedia765/a-051853/internal/transport/http/handlers"
	"github.com/imedia765/a-051853/internal/transport/http/middleware"
	"github.com/imedia765/a-051853/internal/transport/http/response"
	"github.com/imedia765/a-051853/internal/transport/http/router"
)

const (
	loginPath    = "/login"
	devJWTSecret = "dev-only-credstore-secret"
)

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (*sql.DB, error)

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(rabbitURL, exchange string) (EventPublisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

// EventPublisher is what both application services publish to.
type EventPublisher interface {
	member.EventPublisher
	password.EventPublisher
}

type stores struct {
	members    member.MemberRepo
	roles      member.RoleRepo
	collectors member.CollectorRepo
	logs       member.LogRepo
}

type credentialStore interface {
	member.CredentialStore
	password.CredentialStore
}

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	checks := map[string]http_handlers.Check{}

	// 1) member database; dev without DB_ADDR runs on seeded memory repos
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	var (
		st      stores
		devSeed *memory.SeedTargets
	)
	if cfg.DBAddr != "" {
		db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			return nil, nil, err
		}
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })

		if cfg.IsDev() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := postgres.ApplySchema(ctx, db)
			cancel()
			if err != nil {
				return fail(err)
			}
		}

		st = stores{
			members:    postgres.NewMemberRepo(db),
			roles:      postgres.NewRoleRepo(db),
			collectors: postgres.NewCollectorRepo(db),
			logs:       postgres.NewLogRepo(db),
		}
		checks["db"] = db.PingContext
	} else {
		logger.Logger.Warn().Msg("DB_ADDR not set; using in-memory member store")
		mr, rr, cr, lr := memory.NewMemberRepo(), memory.NewRoleRepo(), memory.NewCollectorRepo(), memory.NewLogRepo()
		st = stores{members: mr, roles: rr, collectors: cr, logs: lr}
		devSeed = &memory.SeedTargets{Members: mr, Roles: rr, Collectors: cr, Logs: lr, EmailDomain: cfg.AuthEmailDomain}
	}

	// 2) redis (best-effort)
	var redisCli *redis.Client
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; sessions and locks kept in memory")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			checks["redis"] = c.Ping
		}
	}

	var (
		sessions interface {
			member.SessionStore
			password.SessionRemover
		}
		locker  password.Locker
		limiter middleware.RateLimiter
		roles   = st.roles
	)
	if redisCli != nil {
		sessions = redis.NewSessionStore(redisCli)
		locker = redis.NewLocker(redisCli)
		limiter = redis.NewFixedWindowLimiter(redisCli)
		roles = redis.NewCachedRoleRepo(st.roles, redisCli, cfg.RoleCacheTTL)
	} else {
		sessions = memory.NewSessionStore()
		locker = memory.NewLocker()
	}

	// 3) credential store
	var (
		creds    credentialStore
		verifier member.TokenVerifier
	)
	if cfg.CredStoreURL != "" {
		creds = credstore.NewClient(cfg.CredStoreURL, cfg.CredStoreAnonKey, credstore.ClientConfig{
			ReadTimeout:  cfg.CredStoreReadTimeout,
			WriteTimeout: cfg.CredStoreWriteTimeout,
		})
		if cfg.CredStoreJWTSecret != "" {
			verifier = security.NewHS256Verifier(cfg.CredStoreJWTSecret)
		}
	} else {
		logger.Logger.Warn().Msg("CREDSTORE_URL not set; using in-memory credential store")
		secret := cfg.CredStoreJWTSecret
		if secret == "" {
			secret = devJWTSecret
		}
		signer := security.NewHS256Signer(secret, "member-dashboard-dev")
		mem := memory.NewCredentialStore(hasher, signer, cfg.AuthEmailDomain)
		creds = mem
		verifier = signer.Verifier()
		if devSeed != nil {
			devSeed.Creds = mem
		}
	}

	// seed (dev only, memory-backed)
	if cfg.IsDev() && devSeed != nil && devSeed.Creds != nil {
		memory.Seed(*devSeed)
	}

	// 4) publisher
	var pub EventPublisher
	p, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	switch {
	case err == nil:
		pub = p
		if c, ok := p.(interface{ Close() error }); ok {
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	case cfg.IsDev():
		logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		pub = memory.NewNoopPublisher()
	default:
		return fail(err)
	}

	// 5) services
	auditLog := audit.New(logger.Logger)

	memberSvc := member.NewService(st.members, roles, st.collectors, st.logs, sessions, creds, member.Config{
		EmailDomain:       cfg.AuthEmailDomain,
		SessionTTL:        cfg.SessionTTL,
		LoginMaxRetries:   cfg.LoginMaxRetries,
		LoginInitialDelay: cfg.LoginInitialDelay,
	}).WithPublisher(pub).WithAudit(auditLog)
	if verifier != nil {
		memberSvc = memberSvc.WithVerifier(verifier)
	}

	reauth := password.NewReauthenticator(creds, cfg.ReauthMaxRetries, cfg.ReauthInitialDelay).
		WithAttemptHook(metrics.ReauthAttemptHook())
	passwords := password.NewOrchestrator(creds, reauth, password.NewTeardown(creds, sessions, loginPath), password.Config{
		EmailDomain: cfg.AuthEmailDomain,
		SettleDelay: cfg.PasswordSettleDelay,
		GuardTTL:    cfg.ChangeGuardTTL,
	}).WithGuard(locker).WithPublisher(pub).WithObserver(metrics.PasswordObserver())

	// 6) handlers + middleware
	secureCookies := !cfg.IsDev()
	if len(cfg.AllowedOrigins) == 0 && !cfg.IsDev() {
		logger.Logger.Warn().Msg("ALLOWED_ORIGINS not set; origin check disabled")
	}
	if budget := cfg.PasswordChangeBudget(); cfg.HTTPWriteTimeout < budget || cfg.ChangeGuardTTL < budget {
		logger.Logger.Warn().
			Dur("password_change_budget", budget).
			Dur("http_write_timeout", cfg.HTTPWriteTimeout).
			Dur("change_guard_ttl", cfg.ChangeGuardTTL).
			Msg("password change may outlive the write timeout or guard ttl")
	}

	rl := func(name string, limit int, window time.Duration) func(http.Handler) http.Handler {
		return middleware.RateLimit(limiter, middleware.RouteLimit{Name: name, Limit: limit, Window: window}, response.WriteError)
	}

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:    http_handlers.NewHealthHandler(checks),
		Auth:      http_handlers.NewAuthHandler(memberSvc, passwords, cfg.SessionTTL, secureCookies).WithAudit(auditLog),
		Dashboard: http_handlers.NewDashboardHandler(memberSvc),
		System:    http_handlers.NewSystemHandler(memberSvc),
		Metrics:   metrics.Handler(),
		Docs:      docs.Handler(),

		SessionMW:   middleware.Session(memberSvc, response.WriteError),
		UsersTabMW:  middleware.RequireTab(domain.TabUsers, response.WriteError),
		SystemTabMW: middleware.RequireTab(domain.TabSystem, response.WriteError),

		LoginLimitMW:    rl("login", 5, time.Minute),
		PasswordLimitMW: rl("password_change", 5, time.Minute),

		OriginMW: middleware.OriginCheck(cfg.AllowedOrigins, response.WriteError),
		HSTS:     secureCookies,
	})
	if err != nil {
		return fail(err)
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return srv, func() { runCleanup(cleanupFns) }, nil
}

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		NewRedis:   redis.New,
		NewPublisher: func(url, exchange string) (EventPublisher, error) {
			if url == "" {
				return nil, errors.New("RABBIT_URL not set")
			}
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewRouter: router.New,
	}
}

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
