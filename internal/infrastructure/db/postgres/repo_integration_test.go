//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/domain"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("members"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, ApplySchema(ctx, db))
	return db
}

func TestRepos_AgainstPostgres(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
INSERT INTO members (id, member_number, full_name, collector, family_member_name, family_member_dob)
VALUES ('11111111-1111-1111-1111-111111111111', 'TM1', 'Amina Khan', 'North', 'Bilal', '1990-04-01'),
       ('22222222-2222-2222-2222-222222222222', 'TM2', 'Omar Ali', 'South', NULL, NULL);
INSERT INTO user_roles (user_id, role) VALUES ('33333333-3333-3333-3333-333333333333', 'collector');
INSERT INTO members_collectors (name, member_number, active) VALUES ('North', 'TC1', true);
INSERT INTO monitoring_logs (event_type, metric_name, severity) VALUES ('system', 'cpu', 'warning'), ('system', 'disk', 'critical');
`)
	require.NoError(t, err)

	members := NewMemberRepo(db)

	m, err := members.GetByNumber(ctx, "tm1")
	require.NoError(t, err)
	require.Equal(t, "1990-04-01", m.FamilyMemberDOB)
	require.Empty(t, m.AuthUserID)

	require.NoError(t, members.LinkAuthUser(ctx, m.ID, "33333333-3333-3333-3333-333333333333"))

	list, err := members.List(ctx, member.MemberFilter{Search: "omar", Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "TM2", list[0].MemberNumber)

	email := "amina@example.com"
	updated, err := members.UpdateProfile(ctx, m.ID, domain.ProfileUpdate{Email: &email})
	require.NoError(t, err)
	require.Equal(t, email, updated.Email)
	require.Equal(t, "33333333-3333-3333-3333-333333333333", updated.AuthUserID)

	roles, err := NewRoleRepo(db).RolesForUser(ctx, updated.AuthUserID)
	require.NoError(t, err)
	require.Equal(t, []domain.Role{domain.RoleCollector}, roles)

	c, err := NewCollectorRepo(db).GetByMemberNumber(ctx, "TC1")
	require.NoError(t, err)
	require.Equal(t, "North", c.Name)

	crit, err := NewLogRepo(db).ListMonitoring(ctx, "critical", 10)
	require.NoError(t, err)
	require.Len(t, crit, 1)
	require.Equal(t, "disk", crit[0].MetricName)
}
