package dto

import (
	"time"

	"github.com/imedia765/a-051853/internal/application/member"
	"github.com/imedia765/a-051853/internal/domain"
)

type FamilyView struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	DateOfBirth  string `json:"date_of_birth,omitempty"`
	Gender       string `json:"gender,omitempty"`
}

type MemberView struct {
	ID             string      `json:"id"`
	MemberNumber   string      `json:"member_number"`
	FullName       string      `json:"full_name"`
	Email          string      `json:"email,omitempty"`
	Phone          string      `json:"phone,omitempty"`
	Address        string      `json:"address,omitempty"`
	Town           string      `json:"town,omitempty"`
	Postcode       string      `json:"postcode,omitempty"`
	MembershipType string      `json:"membership_type,omitempty"`
	Status         string      `json:"status,omitempty"`
	Collector      string      `json:"collector,omitempty"`
	Family         *FamilyView `json:"family,omitempty"`
	UpdatedAt      *time.Time  `json:"updated_at,omitempty"`
}

func NewMemberView(m domain.Member) MemberView {
	v := MemberView{
		ID:             m.ID,
		MemberNumber:   m.MemberNumber,
		FullName:       m.FullName,
		Email:          m.Email,
		Phone:          m.Phone,
		Address:        m.Address,
		Town:           m.Town,
		Postcode:       m.Postcode,
		MembershipType: m.MembershipType,
		Status:         m.Status,
		Collector:      m.Collector,
	}
	if m.HasFamily() {
		v.Family = &FamilyView{
			Name:         m.FamilyMemberName,
			Relationship: m.FamilyMemberRelationship,
			DateOfBirth:  m.FamilyMemberDOB,
			Gender:       m.FamilyMemberGender,
		}
	}
	if !m.UpdatedAt.IsZero() {
		t := m.UpdatedAt
		v.UpdatedAt = &t
	}
	return v
}

type MembersData struct {
	Collector string       `json:"collector,omitempty"`
	Members   []MemberView `json:"members"`
	Count     int          `json:"count"`
}

func NewMembersData(p member.MembersPage) MembersData {
	out := MembersData{Members: make([]MemberView, 0, len(p.Members))}
	if p.Collector != nil {
		out.Collector = p.Collector.Name
	}
	for _, m := range p.Members {
		out.Members = append(out.Members, NewMemberView(m))
	}
	out.Count = len(out.Members)
	return out
}

type AuditLogView struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	TableName string    `json:"table_name"`
	RecordID  string    `json:"record_id,omitempty"`
	Details   string    `json:"details,omitempty"`
}

func NewAuditLogViews(logs []domain.AuditLog) []AuditLogView {
	out := make([]AuditLogView, 0, len(logs))
	for _, l := range logs {
		out = append(out, AuditLogView{
			ID:        l.ID,
			Timestamp: l.Timestamp,
			Operation: string(l.Operation),
			TableName: l.TableName,
			RecordID:  l.RecordID,
			Details:   l.Details,
		})
	}
	return out
}

type MonitoringLogView struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	EventType   string    `json:"event_type"`
	MetricName  string    `json:"metric_name,omitempty"`
	MetricValue float64   `json:"metric_value"`
	Details     string    `json:"details,omitempty"`
	Severity    string    `json:"severity"`
}

func NewMonitoringLogViews(logs []domain.MonitoringLog) []MonitoringLogView {
	out := make([]MonitoringLogView, 0, len(logs))
	for _, l := range logs {
		out = append(out, MonitoringLogView{
			ID:          l.ID,
			Timestamp:   l.Timestamp,
			EventType:   l.EventType,
			MetricName:  l.MetricName,
			MetricValue: l.MetricValue,
			Details:     l.Details,
			Severity:    string(l.Severity),
		})
	}
	return out
}
