package credstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/imedia765/a-051853/internal/application/password"
	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/logger"
	appCtx "github.com/imedia765/a-051853/internal/pkg/context"
)

const maxBodyBytes = 1 << 20

// ClientConfig holds the per-call timeouts.
type ClientConfig struct {
	// ReadTimeout bounds sign-in calls.
	ReadTimeout time.Duration
	// WriteTimeout bounds sign-up, sign-out and procedure calls.
	WriteTimeout time.Duration
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Client talks to the hosted auth backend over HTTP.
type Client struct {
	baseURL string
	anonKey string
	hc      *http.Client
	cfg     ClientConfig
}

func NewClient(baseURL, anonKey string, cfg ClientConfig) *Client {
	def := DefaultClientConfig()
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		// per-request timeouts come from the context
		hc:  &http.Client{Timeout: 0},
		cfg: cfg,
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.hc = hc
	}
	return c
}

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("credstore: status %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("credstore: status %d: %s", e.Status, e.Message)
}

// RemoteMessage is the backend's own wording.
func (e *StatusError) RemoteMessage() string { return e.Message }

type sessionBody struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	User         *userBody `json:"user"`

	// sign-up without a session answers with the bare user
	ID    string `json:"id"`
	Email string `json:"email"`
}

type userBody struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (b sessionBody) toDomain() domain.AuthSession {
	s := domain.AuthSession{
		AccessToken:  b.AccessToken,
		RefreshToken: b.RefreshToken,
		ExpiresIn:    b.ExpiresIn,
	}
	switch {
	case b.User != nil && b.User.ID != "":
		s.User = &domain.AuthUser{ID: b.User.ID, Email: b.User.Email}
	case b.ID != "":
		s.User = &domain.AuthUser{ID: b.ID, Email: b.Email}
	}
	return s
}

func (c *Client) SignInWithPassword(ctx context.Context, email, pw string) (domain.AuthSession, error) {
	body := map[string]string{"email": email, "password": pw}

	var out sessionBody
	err := c.doJSON(ctx, c.cfg.ReadTimeout, "/auth/v1/token?grant_type=password", "", body, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status < 500 {
			if isInvalidLogin(se) {
				de := domain.ErrInvalidCredentials()
				de.Cause = se
				return domain.AuthSession{}, de
			}
			return domain.AuthSession{}, domain.Wrap(domain.KindAuth, "credstore_rejected", se.Message, se)
		}
		return domain.AuthSession{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) SignUp(ctx context.Context, email, pw string, metadata map[string]string) (domain.AuthSession, error) {
	body := map[string]any{"email": email, "password": pw, "data": metadata}

	var out sessionBody
	err := c.doJSON(ctx, c.cfg.WriteTimeout, "/auth/v1/signup", "", body, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status < 500 {
			return domain.AuthSession{}, domain.ErrAccountCreateFailed(se)
		}
		return domain.AuthSession{}, err
	}
	return out.toDomain(), nil
}

// SignOut revokes accessToken. Tokens the backend no longer knows count as signed out.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return nil
	}
	err := c.doJSON(ctx, c.cfg.WriteTimeout, "/auth/v1/logout", accessToken, nil, nil)
	var se *StatusError
	if errors.As(err, &se) && (se.Status == http.StatusUnauthorized || se.Status == http.StatusNotFound) {
		return nil
	}
	return err
}

type resetBody struct {
	MemberNumber    string `json:"member_number"`
	NewPassword     string `json:"new_password"`
	CurrentPassword string `json:"current_password,omitempty"`
	IPAddress       string `json:"ip_address"`
	UserAgent       string `json:"user_agent"`
	// the procedure takes client_info as a JSON-encoded string
	ClientInfo string `json:"client_info"`
}

func (c *Client) CallPasswordReset(ctx context.Context, p password.ResetParams) (json.RawMessage, error) {
	info, err := json.Marshal(p.ClientInfo)
	if err != nil {
		return nil, fmt.Errorf("marshal client info: %w", err)
	}
	body := resetBody{
		MemberNumber:    p.MemberNumber,
		NewPassword:     p.NewPassword,
		CurrentPassword: p.CurrentPassword,
		IPAddress:       p.IPAddress,
		UserAgent:       p.UserAgent,
		ClientInfo:      string(info),
	}

	var out json.RawMessage
	if err := c.doJSON(ctx, c.cfg.WriteTimeout, "/rest/v1/rpc/handle_password_reset", "", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// doJSON posts in to path and decodes a 2xx body into out (which may be nil).
func (c *Client) doJSON(ctx context.Context, timeout time.Duration, path, bearer string, in, out any) error {
	var rd io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}
	if rid := appCtx.GetRequestID(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	log := logger.WithCtx(ctx).With().Str("path", req.URL.Path).Logger()
	start := time.Now()

	resp, err := c.hc.Do(req)
	if err != nil {
		log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("credstore_request_failed")
		return domain.ErrCredentialStoreUnavailable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.ErrCredentialStoreUnavailable(err)
	}
	log.Debug().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("credstore_request_completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := parseStatusError(resp.StatusCode, raw)
		if resp.StatusCode >= 500 {
			return domain.ErrCredentialStoreUnavailable(se)
		}
		return se
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		if rm, ok := out.(*json.RawMessage); ok {
			*rm = json.RawMessage("null")
		}
		return nil
	}
	if rm, ok := out.(*json.RawMessage); ok {
		*rm = append((*rm)[:0], raw...)
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.ErrProtocol(err)
	}
	return nil
}

// parseStatusError reads the error shapes the backend uses across its auth and REST surfaces.
func parseStatusError(status int, raw []byte) *StatusError {
	se := &StatusError{Status: status}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		se.Message = strings.TrimSpace(string(raw))
		if se.Message == "" {
			se.Message = http.StatusText(status)
		}
		return se
	}

	str := func(key string) string {
		v, ok := body[key]
		if !ok {
			return ""
		}
		var s string
		if json.Unmarshal(v, &s) == nil {
			return strings.TrimSpace(s)
		}
		// numeric codes
		return strings.Trim(strings.TrimSpace(string(v)), `"`)
	}

	se.Code = str("error_code")
	if se.Code == "" {
		se.Code = str("code")
	}
	for _, k := range []string{"error_description", "msg", "message", "error"} {
		if m := str(k); m != "" {
			se.Message = m
			break
		}
	}
	if se.Code == "" {
		se.Code = str("error")
	}
	if se.Message == "" {
		se.Message = http.StatusText(status)
	}
	return se
}

func isInvalidLogin(se *StatusError) bool {
	if se.Code == "invalid_grant" || se.Code == "invalid_credentials" {
		return true
	}
	return strings.Contains(strings.ToLower(se.Message), "invalid login credentials")
}
