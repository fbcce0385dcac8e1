package member

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedia765/a-051853/internal/domain"
)

func newSessionService(sessions *fakeSessions, roles *fakeRoles, creds *fakeCreds, sleep *fakeSleeper) *Service {
	return NewService(newFakeMembers(), roles, &fakeCollectors{}, &fakeLogs{}, sessions, creds, Config{
		RoleMaxRetries: 2,
		RoleRetryDelay: 500 * time.Millisecond,
	}).
		WithSleeper(sleep.Sleep).
		WithClock(func() time.Time { return fixedNow })
}

func TestAuthenticate_MissingSession(t *testing.T) {
	t.Parallel()

	svc := newSessionService(newFakeSessions(), &fakeRoles{}, newFakeCreds(), &fakeSleeper{})
	_, err := svc.Authenticate(context.Background(), " ")
	requireErrCode(t, err, "session_missing")

	_, err = svc.Authenticate(context.Background(), "nope")
	requireErrCode(t, err, "session_invalid")
}

func TestAuthenticate_ExpiredSessionIsDeleted(t *testing.T) {
	t.Parallel()

	sessions := newFakeSessions()
	sessions.byID["s1"] = domain.DashboardSession{ID: "s1", ExpiresAt: fixedNow.Add(-time.Second)}
	svc := newSessionService(sessions, &fakeRoles{}, newFakeCreds(), &fakeSleeper{})

	_, err := svc.Authenticate(context.Background(), "s1")
	requireErrCode(t, err, "session_invalid")
	assert.Equal(t, []string{"s1"}, sessions.deleted)
}

func TestAuthenticate_LoadsRolesWithConstantBackoff(t *testing.T) {
	t.Parallel()

	sessions := newFakeSessions()
	sessions.byID["s1"] = domain.DashboardSession{ID: "s1", AuthUserID: "u1", ExpiresAt: fixedNow.Add(time.Hour)}
	roles := &fakeRoles{
		roles: map[string][]domain.Role{"u1": {domain.RoleAdmin}},
		errs:  []error{domain.ErrDBUnavailable(nil), domain.ErrDBUnavailable(nil)},
	}
	sleep := &fakeSleeper{}
	svc := newSessionService(sessions, roles, newFakeCreds(), sleep)

	id, err := svc.Authenticate(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())
	assert.True(t, id.Can(domain.TabSystem))
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, sleep.delays)
}

func TestAuthenticate_NonTransientRoleErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	sessions := newFakeSessions()
	sessions.byID["s1"] = domain.DashboardSession{ID: "s1", AuthUserID: "u1"}
	roles := &fakeRoles{errs: []error{domain.ErrInternal(nil)}}
	svc := newSessionService(sessions, roles, newFakeCreds(), &fakeSleeper{})

	_, err := svc.Authenticate(context.Background(), "s1")
	requireErrCode(t, err, "internal_error")
	assert.Equal(t, 1, roles.calls)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	sessions := newFakeSessions()
	sessions.byID["s1"] = domain.DashboardSession{ID: "s1", AccessToken: "tok", MemberNumber: "TM1"}
	creds := newFakeCreds()
	svc := newSessionService(sessions, &fakeRoles{}, creds, &fakeSleeper{})

	require.NoError(t, svc.Logout(context.Background(), "s1"))
	assert.Equal(t, []string{"tok"}, creds.signOuts)
	assert.Equal(t, []string{"s1"}, sessions.deleted)

	// second logout and empty ids are no-ops
	require.NoError(t, svc.Logout(context.Background(), "s1"))
	require.NoError(t, svc.Logout(context.Background(), ""))
	assert.Len(t, creds.signOuts, 1)
}
