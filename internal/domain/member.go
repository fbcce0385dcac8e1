package domain

import "time"

type Member struct {
	ID             string
	MemberNumber   string
	FullName       string
	Email          string
	Phone          string
	Address        string
	Town           string
	Postcode       string
	MembershipType string
	Status         string
	Collector      string
	AuthUserID     string

	FamilyMemberName         string
	FamilyMemberRelationship string
	FamilyMemberDOB          string
	FamilyMemberGender       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasFamily reports whether any family field was filled in.
func (m Member) HasFamily() bool {
	return m.FamilyMemberName != "" ||
		m.FamilyMemberRelationship != "" ||
		m.FamilyMemberDOB != "" ||
		m.FamilyMemberGender != ""
}

// ProfileUpdate holds the editable member fields. Nil means "leave unchanged".
type ProfileUpdate struct {
	Email          *string
	Phone          *string
	Address        *string
	Town           *string
	Postcode       *string
	MembershipType *string
	Status         *string
	Collector      *string
}

func (p ProfileUpdate) Empty() bool {
	return p.Email == nil && p.Phone == nil && p.Address == nil && p.Town == nil &&
		p.Postcode == nil && p.MembershipType == nil && p.Status == nil && p.Collector == nil
}

// Apply returns m with every non-nil field of p copied over.
func (p ProfileUpdate) Apply(m Member) Member {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&m.Email, p.Email)
	set(&m.Phone, p.Phone)
	set(&m.Address, p.Address)
	set(&m.Town, p.Town)
	set(&m.Postcode, p.Postcode)
	set(&m.MembershipType, p.MembershipType)
	set(&m.Status, p.Status)
	set(&m.Collector, p.Collector)
	return m
}

type Collector struct {
	ID           string
	Name         string
	MemberNumber string
	Active       bool
}

type AuditOperation string

const (
	AuditCreate AuditOperation = "create"
	AuditUpdate AuditOperation = "update"
	AuditDelete AuditOperation = "delete"
)

type AuditLog struct {
	ID        string
	Timestamp time.Time
	Operation AuditOperation
	TableName string
	RecordID  string
	Details   string
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

func IsValidSeverity(s string) bool {
	switch Severity(s) {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

type MonitoringLog struct {
	ID          string
	Timestamp   time.Time
	EventType   string
	MetricName  string
	MetricValue float64
	Details     string
	Severity    Severity
}
