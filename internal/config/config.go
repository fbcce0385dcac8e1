package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Infrastructure
	DBAddr         string
	DBDebug        bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RabbitURL      string
	RabbitExchange string

	// Credential store (hosted auth + RPC backend)
	CredStoreURL          string
	CredStoreAnonKey      string
	CredStoreJWTSecret    string
	CredStoreReadTimeout  time.Duration
	CredStoreWriteTimeout time.Duration

	// Member identity
	AuthEmailDomain string

	// Password change flow
	PasswordSettleDelay time.Duration
	ReauthInitialDelay  time.Duration
	ReauthMaxRetries    int
	ChangeGuardTTL      time.Duration

	// Login flow
	LoginMaxRetries   int
	LoginInitialDelay time.Duration

	// Dashboard sessions
	SessionTTL   time.Duration
	RoleCacheTTL time.Duration

	// AllowedOrigins gates cookie-authenticated writes. Empty disables the check.
	AllowedOrigins []string
}

func (c *Config) IsDev() bool { return c.Env == "dev" }

// PasswordChangeBudget is the longest a password change request can take:
// the reset call, the settle pause, every sign-in attempt with its backoff
// and the final sign-out. HTTP_WRITE_TIMEOUT and PASSWORD_CHANGE_GUARD_TTL
// should both be at least this long.
func (c *Config) PasswordChangeBudget() time.Duration {
	budget := 2*c.CredStoreWriteTimeout + c.PasswordSettleDelay
	budget += time.Duration(c.ReauthMaxRetries+1) * c.CredStoreReadTimeout
	delay := c.ReauthInitialDelay
	for i := 0; i < c.ReauthMaxRetries; i++ {
		budget += delay
		delay *= 2
	}
	return budget
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("ENV", "dev"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "members.events"),

		CredStoreURL:       strings.TrimRight(os.Getenv("CREDSTORE_URL"), "/"),
		CredStoreAnonKey:   os.Getenv("CREDSTORE_ANON_KEY"),
		CredStoreJWTSecret: os.Getenv("CREDSTORE_JWT_SECRET"),

		AuthEmailDomain: strings.TrimPrefix(getEnv("AUTH_EMAIL_DOMAIN", "temp.com"), "@"),
		AllowedOrigins:  getList("ALLOWED_ORIGINS"),
	}

	// The member database and the credential store are the source of truth.
	// Outside dev we refuse to start without them; dev falls back to in-memory adapters.
	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" && !cfg.IsDev() {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}
	if cfg.CredStoreURL == "" && !cfg.IsDev() {
		return nil, fmt.Errorf("missing required env var: CREDSTORE_URL")
	}
	if cfg.CredStoreURL != "" && cfg.CredStoreAnonKey == "" {
		return nil, fmt.Errorf("missing required env var: CREDSTORE_ANON_KEY")
	}

	var err error
	if cfg.DBDebug, err = getBool("DB_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"HTTP_READ_TIMEOUT", 10 * time.Second, &cfg.HTTPReadTimeout},
		{"HTTP_WRITE_TIMEOUT", time.Minute, &cfg.HTTPWriteTimeout},
		{"HTTP_IDLE_TIMEOUT", time.Minute, &cfg.HTTPIdleTimeout},
		{"CREDSTORE_READ_TIMEOUT", 3 * time.Second, &cfg.CredStoreReadTimeout},
		{"CREDSTORE_WRITE_TIMEOUT", 5 * time.Second, &cfg.CredStoreWriteTimeout},
		{"PASSWORD_SETTLE_DELAY", 1500 * time.Millisecond, &cfg.PasswordSettleDelay},
		{"REAUTH_INITIAL_DELAY", 1500 * time.Millisecond, &cfg.ReauthInitialDelay},
		{"PASSWORD_CHANGE_GUARD_TTL", time.Minute, &cfg.ChangeGuardTTL},
		{"LOGIN_INITIAL_DELAY", 2 * time.Second, &cfg.LoginInitialDelay},
		{"SESSION_TTL", 12 * time.Hour, &cfg.SessionTTL},
		{"ROLE_CACHE_TTL", 5 * time.Minute, &cfg.RoleCacheTTL},
	}
	for _, d := range durations {
		v, err := getDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	if cfg.ReauthMaxRetries, err = getInt("REAUTH_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.LoginMaxRetries, err = getInt("LOGIN_MAX_RETRIES", 2); err != nil {
		return nil, err
	}
	if cfg.ReauthMaxRetries < 0 || cfg.LoginMaxRetries < 0 {
		return nil, fmt.Errorf("retry counts must not be negative")
	}
	if cfg.AuthEmailDomain == "" {
		return nil, fmt.Errorf("AUTH_EMAIL_DOMAIN must not be empty")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getList splits a comma separated variable, dropping blanks.
func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}
