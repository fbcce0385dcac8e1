package member

import (
	"context"
	"strings"

	"github.com/imedia765/a-051853/internal/domain"
)

func (s *Service) AuditLogs(ctx context.Context, id Identity, limit int) ([]domain.AuditLog, error) {
	if !id.Can(domain.TabSystem) {
		return nil, domain.ErrTabNotAllowed(string(domain.TabSystem))
	}
	return s.logs.ListAudit(ctx, clampLimit(limit))
}

func (s *Service) MonitoringLogs(ctx context.Context, id Identity, severity string, limit int) ([]domain.MonitoringLog, error) {
	if !id.Can(domain.TabSystem) {
		return nil, domain.ErrTabNotAllowed(string(domain.TabSystem))
	}
	severity = strings.ToLower(strings.TrimSpace(severity))
	if severity != "" && !domain.IsValidSeverity(severity) {
		return nil, domain.ErrInvalidField("severity", "must be one of info, warning, error, critical")
	}
	return s.logs.ListMonitoring(ctx, severity, clampLimit(limit))
}
