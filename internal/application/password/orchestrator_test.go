package password

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedia765/a-051853/internal/domain"
)

type harness struct {
	creds    *fakeCreds
	sessions *fakeSessions
	sleeper  *fakeSleeper
	orch     *Orchestrator
}

func newHarness(payload string, signIn ...signInResult) *harness {
	creds := newFakeCreds(payload)
	creds.signInResults = signIn
	sessions := &fakeSessions{}
	sleeper := &fakeSleeper{}

	reauth := NewReauthenticator(creds, 3, 1500*time.Millisecond).WithSleeper(sleeper.Sleep)
	teardown := NewTeardown(creds, sessions, "")
	orch := NewOrchestrator(creds, reauth, teardown, Config{SettleDelay: 1500 * time.Millisecond}).
		WithSleeper(sleeper.Sleep).
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) })

	return &harness{creds: creds, sessions: sessions, sleeper: sleeper, orch: orch}
}

func validRequest() Request {
	return Request{
		MemberNumber:    "M1001",
		CurrentPassword: "old1",
		NewPassword:     "Abcd123!",
		ConfirmPassword: "Abcd123!",
		AccessToken:     "caller-token",
		SessionID:       "sess-1",
		IPAddress:       "10.0.0.1",
		UserAgent:       "test-agent",
		Platform:        "web",
		Language:        "en-GB",
	}
}

func TestChangePassword_Success_ReauthAndTeardown(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`, okSignIn("fresh-token"))

	out, err := h.orch.ChangePassword(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.True(t, out.Reauthenticated)
	assert.Equal(t, "/login", out.RedirectTo)
	assert.Equal(t, []State{
		StateIdle, StateValidating, StateSubmitting, StateRemoteSuccess,
		StateReauthPending, StateReauthDone, StateTornDown, StateTerminal,
	}, out.Trail)

	require.Len(t, h.creds.resetCalls, 1)
	call := h.creds.resetCalls[0]
	assert.Equal(t, "M1001", call.MemberNumber)
	assert.Equal(t, "Abcd123!", call.NewPassword)
	assert.Equal(t, "old1", call.CurrentPassword)
	assert.Equal(t, "10.0.0.1", call.IPAddress)
	assert.Equal(t, "test-agent", call.UserAgent)
	assert.Equal(t, ClientInfo{Platform: "web", Language: "en-GB", Timestamp: "2026-01-02T03:04:05Z"}, call.ClientInfo)

	require.Len(t, h.creds.signInCalls, 1)
	assert.Equal(t, signInCall{"m1001@temp.com", "Abcd123!"}, h.creds.signInCalls[0])

	// exactly one sign-out, of the session we just obtained
	assert.Equal(t, []string{"fresh-token"}, h.creds.signOutCalls)
	assert.Equal(t, []string{"sess-1"}, h.sessions.deleted)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, h.sleeper.delays)
}

func TestChangePassword_ReauthExhausted_StillTearsDown(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`, failSignIn("Invalid login credentials"))

	out, err := h.orch.ChangePassword(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.False(t, out.Reauthenticated)
	assert.Equal(t, "/login", out.RedirectTo)
	assert.Len(t, h.creds.signInCalls, 4)
	assert.Equal(t, []string{"caller-token"}, h.creds.signOutCalls)
	assert.Equal(t, []time.Duration{
		1500 * time.Millisecond, // settle
		1500 * time.Millisecond,
		3 * time.Second,
		6 * time.Second,
	}, h.sleeper.delays)
}

func TestChangePassword_ReauthSucceedsOnRetry(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`, failSignIn("not yet"), failSignIn("not yet"), okSignIn("t3"))

	out, err := h.orch.ChangePassword(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, out.Reauthenticated)
	assert.Len(t, h.creds.signInCalls, 3)
	assert.Equal(t, []string{"t3"}, h.creds.signOutCalls)
}

func TestChangePassword_Mismatch_NoRemoteCalls(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`, okSignIn("x"))
	req := validRequest()
	req.ConfirmPassword = "Mismatch1!"

	out, err := h.orch.ChangePassword(context.Background(), req)

	requireErrCode(t, err, "passwords_mismatch")
	assert.False(t, out.Success)
	assert.Equal(t, "passwords do not match", out.Message)
	assert.Empty(t, h.creds.resetCalls)
	assert.Empty(t, h.creds.signInCalls)
	assert.Empty(t, h.creds.signOutCalls)
	assert.Equal(t, []State{StateIdle, StateValidating, StateTerminal}, out.Trail)
}

func TestChangePassword_MissingCurrentPassword_NoRemoteCalls(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`, okSignIn("x"))
	req := validRequest()
	req.CurrentPassword = ""

	out, err := h.orch.ChangePassword(context.Background(), req)

	requireErrCode(t, err, "current_password_required")
	assert.Equal(t, "current password required", out.Message)
	assert.Empty(t, h.creds.resetCalls)
}

func TestChangePassword_FirstTimeLogin_SkipsCurrentPassword(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`, okSignIn("x"))
	req := validRequest()
	req.FirstTimeLogin = true
	req.CurrentPassword = "ignored"

	_, err := h.orch.ChangePassword(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, h.creds.resetCalls, 1)
	assert.Empty(t, h.creds.resetCalls[0].CurrentPassword)
	assert.True(t, h.creds.resetCalls[0].ClientInfo.FirstTimeLogin)
}

func TestChangePassword_WeakPassword_NoRemoteCalls(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`, okSignIn("x"))
	req := validRequest()
	req.NewPassword = "abcdefgh"
	req.ConfirmPassword = "abcdefgh"

	_, err := h.orch.ChangePassword(context.Background(), req)

	requireErrCode(t, err, "weak_password")
	assert.Empty(t, h.creds.resetCalls)
}

func TestChangePassword_BusinessFailure_NoTeardown(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":false,"error":"X","code":"custom"}`, okSignIn("x"))

	out, err := h.orch.ChangePassword(context.Background(), validRequest())

	requireErrCode(t, err, "custom")
	assert.False(t, out.Success)
	assert.Equal(t, "X", out.Message)
	assert.Empty(t, h.creds.signInCalls)
	assert.Empty(t, h.creds.signOutCalls)
	assert.Empty(t, h.sessions.deleted)
	assert.Equal(t, []State{StateIdle, StateValidating, StateSubmitting, StateRemoteFailure, StateTerminal}, out.Trail)
}

func TestChangePassword_BusinessFailure_FallbackMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		payload string
		want    string
	}{
		{`{"success":false}`, "failed to change password"},
		{`{"success":false,"message":"Too many tries"}`, "Too many tries"},
		{`{"success":false,"error":"","message":"M"}`, "M"},
		{`{"success":false,"error":{"nested":true}}`, "failed to change password"},
	}
	for _, c := range cases {
		h := newHarness(c.payload)
		out, err := h.orch.ChangePassword(context.Background(), validRequest())
		require.Error(t, err, c.payload)
		assert.Equal(t, c.want, out.Message, c.payload)
		assert.Empty(t, h.creds.signOutCalls, c.payload)
	}
}

func TestChangePassword_LockedAccount_KeepsLockedUntil(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":false,"error":"Account locked","code":"account_locked","locked_until":"2026-01-01T00:00:00Z"}`)

	_, err := h.orch.ChangePassword(context.Background(), validRequest())

	requireErrCode(t, err, "account_locked")
	var meta map[string]string
	if de := asDomainErr(err); de != nil {
		meta = de.Meta
	}
	assert.Equal(t, "2026-01-01T00:00:00Z", meta["locked_until"])
}

func TestChangePassword_BusinessFailure_CurrentPasswordWording(t *testing.T) {
	t.Parallel()

	cases := []string{
		`{"success":false,"error":"Invalid current password"}`,
		`{"success":false,"message":"Current password is incorrect"}`,
		`{"success":false,"error":"Invalid login credentials","code":"auth_failed","locked_until":"2026-01-01T00:00:00Z"}`,
	}
	for _, payload := range cases {
		h := newHarness(payload, okSignIn("x"))

		out, err := h.orch.ChangePassword(context.Background(), validRequest())

		requireErrCode(t, err, "current_password_incorrect")
		assert.False(t, out.Success, payload)
		assert.Equal(t, "current password incorrect", out.Message, payload)
		assert.Empty(t, h.creds.signInCalls, payload)
		assert.Empty(t, h.creds.signOutCalls, payload)
	}

	h := newHarness(`{"success":false,"error":"Invalid login credentials","code":"auth_failed","locked_until":"2026-01-01T00:00:00Z"}`)
	_, err := h.orch.ChangePassword(context.Background(), validRequest())
	de := asDomainErr(err)
	require.NotNil(t, de)
	assert.Equal(t, "auth_failed", de.Meta["remote_code"])
	assert.Equal(t, "2026-01-01T00:00:00Z", de.Meta["locked_until"])
}

func TestChangePassword_ProtocolViolations(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{
		`[]`,
		`null`,
		`"ok"`,
		`{"ok":true}`,
		`{"success":"true"}`,
		`{"success":1}`,
		`{"success":null}`,
		`{"success":null,"error":"Invalid current password"}`,
		`not json`,
	} {
		h := newHarness(payload, okSignIn("x"))
		out, err := h.orch.ChangePassword(context.Background(), validRequest())

		requireErrCode(t, err, "protocol_error")
		assert.Equal(t, "unexpected server response", out.Message, payload)
		assert.Empty(t, h.creds.signOutCalls, payload)
	}
}

func TestChangePassword_RemoteError_CredentialMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err      error
		wantCode string
		wantMsg  string
	}{
		{messageErr{"Invalid login credentials"}, "current_password_incorrect", "current password incorrect"},
		{messageErr{"Current password is incorrect"}, "current_password_incorrect", "current password incorrect"},
		{errors.New("invalid credentials supplied"), "current_password_incorrect", "current password incorrect"},
		{messageErr{"function handle_password_reset does not exist"}, "remote_error", "function handle_password_reset does not exist"},
		{errors.New("dial tcp: connection refused"), "remote_error", "password change request failed"},
		{domain.ErrCredentialStoreUnavailable(errors.New("dial tcp 10.0.0.9:443: i/o timeout")), "remote_error", "authentication backend unavailable"},
	}
	for _, c := range cases {
		h := newHarness("")
		h.creds.resetErr = c.err

		out, err := h.orch.ChangePassword(context.Background(), validRequest())

		requireErrCode(t, err, c.wantCode)
		assert.Equal(t, c.wantMsg, out.Message)
		assert.Empty(t, h.creds.signOutCalls)
	}
}

func TestChangePassword_TwoSequentialCalls_TwoRemoteCalls(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`, okSignIn("x"))

	_, err := h.orch.ChangePassword(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = h.orch.ChangePassword(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Len(t, h.creds.resetCalls, 2)
	assert.Len(t, h.creds.signOutCalls, 2)
}

func TestChangePassword_OnSuccessCallback(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`, okSignIn("x"))
	calls := 0

	_, err := h.orch.ChangePassword(context.Background(), validRequest(), OnSuccess(func(o Outcome) {
		calls++
		assert.True(t, o.Success)
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	h2 := newHarness(`{"success":false}`)
	_, err = h2.orch.ChangePassword(context.Background(), validRequest(), OnSuccess(func(Outcome) { calls++ }))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestChangePassword_PanicBecomesUnexpectedError(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`)
	h.creds.panicOnReset = true

	out, err := h.orch.ChangePassword(context.Background(), validRequest())

	requireErrCode(t, err, "unexpected_error")
	assert.False(t, out.Success)
	assert.Equal(t, "unexpected error occurred", out.Message)
	assert.Equal(t, StateTerminal, out.Trail[len(out.Trail)-1])
}

func TestChangePassword_Observers(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`, okSignIn("x"))
	var mu sync.Mutex
	var global, perRun []State

	h.orch.WithObserver(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		global = append(global, e.State)
	})
	_, err := h.orch.ChangePassword(context.Background(), validRequest(), WithObserver(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		perRun = append(perRun, e.State)
		assert.Equal(t, "M1001", e.MemberNumber)
	}))
	require.NoError(t, err)

	assert.Equal(t, global, perRun)
	assert.Contains(t, perRun, StateSubmitting)
}

func TestChangePassword_Guard(t *testing.T) {
	t.Parallel()

	t.Run("held lock rejects", func(t *testing.T) {
		h := newHarness(`{"success":true}`, okSignIn("x"))
		l := newFakeLocker()
		l.held["pwchange:M1001"] = "other"
		h.orch.WithGuard(l)

		_, err := h.orch.ChangePassword(context.Background(), validRequest())

		requireErrCode(t, err, "change_in_progress")
		assert.Empty(t, h.creds.resetCalls)
	})

	t.Run("released after run", func(t *testing.T) {
		h := newHarness(`{"success":false}`)
		l := newFakeLocker()
		h.orch.WithGuard(l)

		_, _ = h.orch.ChangePassword(context.Background(), validRequest())

		assert.Empty(t, l.held)
		assert.Equal(t, []string{"pwchange:M1001"}, l.released)
	})

	t.Run("broken guard fails open", func(t *testing.T) {
		h := newHarness(`{"success":true}`, okSignIn("x"))
		l := newFakeLocker()
		l.err = errors.New("redis down")
		h.orch.WithGuard(l)

		_, err := h.orch.ChangePassword(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Len(t, h.creds.resetCalls, 1)
	})
}

func TestChangePassword_PublishesEvent(t *testing.T) {
	t.Parallel()

	h := newHarness(`{"success":true}`, okSignIn("x"))
	pub := &fakePublisher{err: errors.New("broker down")}
	h.orch.WithPublisher(pub)

	out, err := h.orch.ChangePassword(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, out.Success, "publish failure must not fail the flow")

	require.Len(t, pub.events, 1)
	assert.Equal(t, "M1001", pub.events[0].MemberNumber)
	assert.True(t, pub.events[0].Reauthenticated)
}

func TestChangePassword_CustomEmailDomain(t *testing.T) {
	t.Parallel()

	creds := newFakeCreds(`{"success":true}`)
	creds.signInResults = []signInResult{okSignIn("x")}
	reauth := NewReauthenticator(creds, 0, time.Millisecond)
	orch := NewOrchestrator(creds, reauth, NewTeardown(creds, nil, "/signin"), Config{EmailDomain: "members.local"}).
		WithSleeper((&fakeSleeper{}).Sleep)

	out, err := orch.ChangePassword(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "/signin", out.RedirectTo)
	assert.Equal(t, "m1001@members.local", creds.signInCalls[0].email)
}
