package postgres

import (
	"context"
	"database/sql"

	"github.com/imedia765/a-051853/internal/domain"
)

type LogRepo struct {
	db *sql.DB
}

func NewLogRepo(db *sql.DB) *LogRepo {
	return &LogRepo{db: db}
}

func (r *LogRepo) ListAudit(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	const q = `
SELECT id, timestamp, operation::text, table_name, COALESCE(record_id,''), COALESCE(new_values::text,'')
FROM audit_logs
ORDER BY timestamp DESC
LIMIT $1;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := []domain.AuditLog{}
	for rows.Next() {
		var (
			l  domain.AuditLog
			op string
		)
		if err := rows.Scan(&l.ID, &l.Timestamp, &op, &l.TableName, &l.RecordID, &l.Details); err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		l.Operation = domain.AuditOperation(op)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

// ListMonitoring returns the newest entries, optionally of one severity only.
func (r *LogRepo) ListMonitoring(ctx context.Context, severity string, limit int) ([]domain.MonitoringLog, error) {
	const q = `
SELECT id, timestamp, event_type::text, metric_name, metric_value, COALESCE(details::text,''), severity::text
FROM monitoring_logs
WHERE ($1 = '' OR severity::text = $1)
ORDER BY timestamp DESC
LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, severity, limit)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := []domain.MonitoringLog{}
	for rows.Next() {
		var (
			l   domain.MonitoringLog
			sev string
		)
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.EventType, &l.MetricName, &l.MetricValue, &l.Details, &sev); err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		l.Severity = domain.Severity(sev)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}
