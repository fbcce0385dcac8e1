package member

import (
	"time"

	"github.com/imedia765/a-051853/internal/audit"
	"github.com/imedia765/a-051853/internal/pkg/retry"
)

type Config struct {
	EmailDomain string
	SessionTTL  time.Duration

	LoginMaxRetries   int
	LoginInitialDelay time.Duration

	RoleMaxRetries int
	RoleRetryDelay time.Duration
}

type Service struct {
	members    MemberRepo
	roles      RoleRepo
	collectors CollectorRepo
	logs       LogRepo
	sessions   SessionStore
	creds      CredentialStore

	verifier TokenVerifier
	pub      EventPublisher
	audit    *audit.Logger

	sleep retry.Sleeper
	now   func() time.Time
	cfg   Config
}

func NewService(
	members MemberRepo,
	roles RoleRepo,
	collectors CollectorRepo,
	logs LogRepo,
	sessions SessionStore,
	creds CredentialStore,
	cfg Config,
) *Service {
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = "temp.com"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.LoginInitialDelay <= 0 {
		cfg.LoginInitialDelay = 2 * time.Second
	}
	if cfg.RoleRetryDelay <= 0 {
		cfg.RoleRetryDelay = time.Second
	}
	return &Service{
		members:    members,
		roles:      roles,
		collectors: collectors,
		logs:       logs,
		sessions:   sessions,
		creds:      creds,
		sleep:      retry.TimerSleep,
		now:        time.Now,
		cfg:        cfg,
	}
}

func (s *Service) WithVerifier(v TokenVerifier) *Service {
	s.verifier = v
	return s
}

func (s *Service) WithPublisher(p EventPublisher) *Service {
	s.pub = p
	return s
}

func (s *Service) WithAudit(a *audit.Logger) *Service {
	s.audit = a
	return s
}

func (s *Service) WithSleeper(fn retry.Sleeper) *Service {
	if fn != nil {
		s.sleep = fn
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}
