package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/domain"
)

func errMemberNotFound() *domain.Error {
	return domain.New(domain.KindNotFound, "member_not_found", "member not found")
}

type MemberRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Member
	now  func() time.Time
}

func NewMemberRepo() *MemberRepo {
	return &MemberRepo{byID: make(map[string]domain.Member), now: time.Now}
}

// Put inserts or replaces m.
func (r *MemberRepo) Put(m domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.MemberNumber = domain.NormalizeMemberNumber(m.MemberNumber)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = r.now()
	}
	m.UpdatedAt = r.now()
	r.byID[m.ID] = m
}

func (r *MemberRepo) GetByNumber(ctx context.Context, number string) (domain.Member, error) {
	number = domain.NormalizeMemberNumber(number)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.byID {
		if m.MemberNumber == number {
			return m, nil
		}
	}
	return domain.Member{}, errMemberNotFound()
}

func (r *MemberRepo) GetByID(ctx context.Context, id string) (domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return domain.Member{}, errMemberNotFound()
	}
	return m, nil
}

func (r *MemberRepo) LinkAuthUser(ctx context.Context, memberID, authUserID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[memberID]
	if !ok {
		return errMemberNotFound()
	}
	m.AuthUserID = authUserID
	m.UpdatedAt = r.now()
	r.byID[memberID] = m
	return nil
}

func (r *MemberRepo) List(ctx context.Context, f member.MemberFilter) ([]domain.Member, error) {
	search := strings.ToLower(f.Search)

	r.mu.RLock()
	out := make([]domain.Member, 0, len(r.byID))
	for _, m := range r.byID {
		if f.Collector != "" && m.Collector != f.Collector {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(m.FullName), search) &&
			!strings.Contains(strings.ToLower(m.MemberNumber), search) {
			continue
		}
		out = append(out, m)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].MemberNumber < out[j].MemberNumber })

	if f.Offset >= len(out) {
		return []domain.Member{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MemberRepo) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return domain.Member{}, errMemberNotFound()
	}
	m = upd.Apply(m)
	m.UpdatedAt = r.now()
	r.byID[id] = m
	return m, nil
}

type RoleRepo struct {
	mu    sync.RWMutex
	roles map[string][]domain.Role
}

func NewRoleRepo() *RoleRepo {
	return &RoleRepo{roles: make(map[string][]domain.Role)}
}

func (r *RoleRepo) Grant(authUserID string, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if domain.HasRole(r.roles[authUserID], role) {
		return
	}
	r.roles[authUserID] = append(r.roles[authUserID], role)
}

func (r *RoleRepo) RolesForUser(ctx context.Context, authUserID string) ([]domain.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Role(nil), r.roles[authUserID]...), nil
}

type CollectorRepo struct {
	mu       sync.RWMutex
	byNumber map[string]domain.Collector
}

func NewCollectorRepo() *CollectorRepo {
	return &CollectorRepo{byNumber: make(map[string]domain.Collector)}
}

func (r *CollectorRepo) Put(c domain.Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.MemberNumber = domain.NormalizeMemberNumber(c.MemberNumber)
	r.byNumber[c.MemberNumber] = c
}

func (r *CollectorRepo) GetByMemberNumber(ctx context.Context, number string) (domain.Collector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byNumber[domain.NormalizeMemberNumber(number)]
	if !ok {
		return domain.Collector{}, domain.ErrCollectorNotFound()
	}
	return c, nil
}

// LogRepo holds audit and monitoring entries newest first.
type LogRepo struct {
	mu         sync.RWMutex
	audit      []domain.AuditLog
	monitoring []domain.MonitoringLog
}

func NewLogRepo() *LogRepo { return &LogRepo{} }

func (r *LogRepo) AddAudit(l domain.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audit = append([]domain.AuditLog{l}, r.audit...)
}

func (r *LogRepo) AddMonitoring(l domain.MonitoringLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.monitoring = append([]domain.MonitoringLog{l}, r.monitoring...)
}

func (r *LogRepo) ListAudit(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := min(max(limit, 0), len(r.audit))
	return append([]domain.AuditLog(nil), r.audit[:n]...), nil
}

func (r *LogRepo) ListMonitoring(ctx context.Context, severity string, limit int) ([]domain.MonitoringLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.MonitoringLog, 0, min(max(limit, 0), len(r.monitoring)))
	for _, l := range r.monitoring {
		if len(out) == limit {
			break
		}
		if severity != "" && string(l.Severity) != severity {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
