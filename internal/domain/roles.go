package domain

type Role string

const (
	// Member can see their own dashboard.
	RoleMember Role = "member"
	// Collector manages the members assigned to them and collects payments.
	RoleCollector Role = "collector"
	// Admin has full access, including system audit and monitoring.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleMember) || r == string(RoleCollector) || r == string(RoleAdmin)
}

// RoleRank: bigger => higher privilege
func RoleRank(r string) int {
	switch r {
	case string(RoleMember):
		return 1
	case string(RoleCollector):
		return 2
	case string(RoleAdmin):
		return 3
	default:
		return 0
	}
}

// PrimaryRole picks the highest-privilege role a user holds.
// Returns "" when the user holds no recognised role.
func PrimaryRole(roles []Role) Role {
	var best Role
	for _, r := range roles {
		if RoleRank(string(r)) > RoleRank(string(best)) {
			best = r
		}
	}
	return best
}

func HasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// Tab is a top-level dashboard section.
type Tab string

const (
	TabDashboard  Tab = "dashboard"
	TabUsers      Tab = "users"
	TabFinancials Tab = "financials"
	TabSystem     Tab = "system"
)

// AllTabs is the navigation order.
var AllTabs = []Tab{TabDashboard, TabUsers, TabFinancials, TabSystem}

// CanAccessTab decides whether a holder of roles may open tab.
// Unknown tabs and users without roles are always denied.
func CanAccessTab(roles []Role, tab Tab) bool {
	if len(roles) == 0 {
		return false
	}
	admin := HasRole(roles, RoleAdmin)
	collector := HasRole(roles, RoleCollector)

	switch tab {
	case TabDashboard:
		return true
	case TabUsers, TabFinancials:
		return admin || collector
	case TabSystem:
		return admin
	default:
		return false
	}
}

func VisibleTabs(roles []Role) []Tab {
	out := make([]Tab, 0, len(AllTabs))
	for _, t := range AllTabs {
		if CanAccessTab(roles, t) {
			out = append(out, t)
		}
	}
	return out
}

type Permissions struct {
	CanManageUsers     bool `json:"can_manage_users"`
	CanCollectPayments bool `json:"can_collect_payments"`
	CanAccessSystem    bool `json:"can_access_system"`
	CanViewAudit       bool `json:"can_view_audit"`
}

func PermissionsFor(roles []Role) Permissions {
	admin := HasRole(roles, RoleAdmin)
	collector := HasRole(roles, RoleCollector)
	return Permissions{
		CanManageUsers:     admin || collector,
		CanCollectPayments: admin || collector,
		CanAccessSystem:    admin,
		CanViewAudit:       admin,
	}
}
