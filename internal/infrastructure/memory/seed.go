package memory

import (
	"time"

	"github.com/google/uuid"

	"github.com/imedia765/a-051853/internal/domain"
	"github.com/imedia765/a-051853/internal/logger"
)

type SeedTargets struct {
	Members     *MemberRepo
	Roles       *RoleRepo
	Collectors  *CollectorRepo
	Logs        *LogRepo
	Creds       *CredentialStore
	EmailDomain string
}

// Seed loads a small member base for local development. Members without an account
// get one on their first login with their member number as password.
func Seed(t SeedTargets) {
	type seedAccount struct {
		member domain.Member
		pass   string
		role   domain.Role
	}

	accounts := []seedAccount{
		{
			member: domain.Member{ID: uuid.NewString(), MemberNumber: "TA0001", FullName: "Admin User", Status: "active", MembershipType: "standard"},
			pass:   "AdminPassword123!",
			role:   domain.RoleAdmin,
		},
		{
			member: domain.Member{ID: uuid.NewString(), MemberNumber: "TC0001", FullName: "Yusuf Rahman", Status: "active", MembershipType: "standard", Collector: "North"},
			pass:   "CollectorPassword123!",
			role:   domain.RoleCollector,
		},
	}

	for _, a := range accounts {
		uid := uuid.NewString()
		email := domain.MemberEmail(a.member.MemberNumber, t.EmailDomain)
		if err := t.Creds.Provision(uid, email, a.pass); err != nil {
			logger.Logger.Warn().Err(err).Str("member_number", a.member.MemberNumber).Msg("seed_account_failed")
			continue
		}
		a.member.AuthUserID = uid
		t.Members.Put(a.member)
		t.Roles.Grant(uid, domain.RoleMember)
		t.Roles.Grant(uid, a.role)
	}

	t.Collectors.Put(domain.Collector{ID: uuid.NewString(), Name: "North", MemberNumber: "TC0001", Active: true})

	for _, m := range []domain.Member{
		{ID: uuid.NewString(), MemberNumber: "TM10001", FullName: "Amina Khan", Town: "Leeds", Status: "active", MembershipType: "family", Collector: "North",
			FamilyMemberName: "Bilal Khan", FamilyMemberRelationship: "spouse", FamilyMemberGender: "male"},
		{ID: uuid.NewString(), MemberNumber: "TM10002", FullName: "Omar Ali", Town: "Bradford", Status: "active", MembershipType: "standard", Collector: "North"},
		{ID: uuid.NewString(), MemberNumber: "TM10003", FullName: "Sara Begum", Town: "York", Status: "pending", MembershipType: "standard", Collector: "South"},
	} {
		t.Members.Put(m)
	}

	now := time.Now().UTC()
	t.Logs.AddAudit(domain.AuditLog{ID: uuid.NewString(), Timestamp: now, Operation: domain.AuditCreate, TableName: "members", RecordID: "TM10003", Details: "seeded"})
	t.Logs.AddMonitoring(domain.MonitoringLog{ID: uuid.NewString(), Timestamp: now, EventType: "system", MetricName: "startup", MetricValue: 1, Severity: domain.SeverityInfo})

	logger.Logger.Info().Int("accounts", len(accounts)).Msg("seed_complete")
}
