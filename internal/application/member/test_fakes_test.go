package member

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/imedia765/a-051853/internal/domain"
)

type fakeMembers struct {
	mu sync.Mutex

	byID map[string]domain.Member

	getErrs []error // consumed one per GetByNumber call
	listErr error

	linked  []struct{ memberID, userID string }
	updates []domain.ProfileUpdate
	lastF   MemberFilter
}

func newFakeMembers(ms ...domain.Member) *fakeMembers {
	f := &fakeMembers{byID: map[string]domain.Member{}}
	for _, m := range ms {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMembers) GetByNumber(ctx context.Context, number string) (domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.getErrs) > 0 {
		err := f.getErrs[0]
		f.getErrs = f.getErrs[1:]
		if err != nil {
			return domain.Member{}, err
		}
	}
	for _, m := range f.byID {
		if m.MemberNumber == number {
			return m, nil
		}
	}
	return domain.Member{}, domain.New(domain.KindNotFound, "member_not_found", "member not found")
}

func (f *fakeMembers) GetByID(ctx context.Context, id string) (domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return domain.Member{}, domain.New(domain.KindNotFound, "member_not_found", "member not found")
	}
	return m, nil
}

func (f *fakeMembers) LinkAuthUser(ctx context.Context, memberID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linked = append(f.linked, struct{ memberID, userID string }{memberID, userID})
	m := f.byID[memberID]
	m.AuthUserID = userID
	f.byID[memberID] = m
	return nil
}

func (f *fakeMembers) List(ctx context.Context, flt MemberFilter) ([]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastF = flt
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Member
	for _, m := range f.byID {
		if flt.Collector != "" && m.Collector != flt.Collector {
			continue
		}
		if flt.Search != "" && !strings.Contains(strings.ToLower(m.FullName+" "+m.MemberNumber), strings.ToLower(flt.Search)) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMembers) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return domain.Member{}, domain.New(domain.KindNotFound, "member_not_found", "member not found")
	}
	f.updates = append(f.updates, upd)
	m = upd.Apply(m)
	f.byID[id] = m
	return m, nil
}

type fakeRoles struct {
	mu    sync.Mutex
	roles map[string][]domain.Role
	errs  []error
	calls int
}

func (f *fakeRoles) RolesForUser(ctx context.Context, uid string) ([]domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.roles[uid], nil
}

type fakeCollectors struct {
	byNumber map[string]domain.Collector
}

func (f *fakeCollectors) GetByMemberNumber(ctx context.Context, number string) (domain.Collector, error) {
	c, ok := f.byNumber[number]
	if !ok {
		return domain.Collector{}, domain.ErrCollectorNotFound()
	}
	return c, nil
}

type fakeLogs struct {
	audit      []domain.AuditLog
	monitoring []domain.MonitoringLog
	lastSev    string
	lastLimit  int
}

func (f *fakeLogs) ListAudit(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	f.lastLimit = limit
	return f.audit, nil
}

func (f *fakeLogs) ListMonitoring(ctx context.Context, severity string, limit int) ([]domain.MonitoringLog, error) {
	f.lastSev, f.lastLimit = severity, limit
	return f.monitoring, nil
}

type fakeSessions struct {
	mu      sync.Mutex
	byID    map[string]domain.DashboardSession
	seq     int
	deleted []string
	ttls    []time.Duration

	createErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[string]domain.DashboardSession{}}
}

func (f *fakeSessions) Create(ctx context.Context, s domain.DashboardSession, ttl time.Duration) (domain.DashboardSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.DashboardSession{}, f.createErr
	}
	f.seq++
	s.ID = fmt.Sprintf("sess-%d", f.seq)
	f.byID[s.ID] = s
	f.ttls = append(f.ttls, ttl)
	return s, nil
}

func (f *fakeSessions) Get(ctx context.Context, id string) (domain.DashboardSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return domain.DashboardSession{}, domain.ErrSessionInvalid()
	}
	return s, nil
}

func (f *fakeSessions) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCreds struct {
	mu sync.Mutex

	// password per email; missing email => invalid credentials
	accounts map[string]string
	signInErrs []error // consumed first, one per call

	signUpNoUser bool
	signUps      []string
	signIns      []string
	signOuts     []string
	signOutErr   error
}

func newFakeCreds() *fakeCreds { return &fakeCreds{accounts: map[string]string{}} }

func (f *fakeCreds) SignInWithPassword(ctx context.Context, email, password string) (domain.AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns = append(f.signIns, email)
	if len(f.signInErrs) > 0 {
		err := f.signInErrs[0]
		f.signInErrs = f.signInErrs[1:]
		if err != nil {
			return domain.AuthSession{}, err
		}
	}
	pw, ok := f.accounts[email]
	if !ok || pw != password {
		return domain.AuthSession{}, domain.ErrInvalidCredentials()
	}
	return domain.AuthSession{AccessToken: "at-" + email, User: &domain.AuthUser{ID: "uid-" + email, Email: email}}, nil
}

func (f *fakeCreds) SignUp(ctx context.Context, email, password string, meta map[string]string) (domain.AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUps = append(f.signUps, email+"|"+meta["member_number"])
	if f.signUpNoUser {
		return domain.AuthSession{}, nil
	}
	f.accounts[email] = password
	return domain.AuthSession{AccessToken: "at-" + email, User: &domain.AuthUser{ID: "uid-" + email, Email: email}}, nil
}

func (f *fakeCreds) SignOut(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts = append(f.signOuts, token)
	return f.signOutErr
}

type fakeVerifier struct {
	sub string
	err error
}

func (v fakeVerifier) VerifyAccessToken(string) (string, error) { return v.sub, v.err }

type fakePublisher struct {
	mu       sync.Mutex
	loggedIn []LoggedInEvent
	updated  []ProfileUpdatedEvent
}

func (p *fakePublisher) PublishMemberLoggedIn(ctx context.Context, evt LoggedInEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loggedIn = append(p.loggedIn, evt)
	return nil
}

func (p *fakePublisher) PublishProfileUpdated(ctx context.Context, evt ProfileUpdatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, evt)
	return errors.New("broker down")
}

type fakeSleeper struct {
	delays []time.Duration
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}
