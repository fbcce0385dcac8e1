package docs

import (
	"net/http"

	"github.com/imedia765/a-051853/internal/transport/http/response"
)

// Document is the subset of OpenAPI 3.0 this service publishes.
type Document struct {
	OpenAPI    string                          `json:"openapi"`
	Info       Info                            `json:"info"`
	Paths      map[string]map[string]Operation `json:"paths"`
	Components Components                      `json:"components"`
}

type Info struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

type Operation struct {
	Summary     string                `json:"summary"`
	OperationID string                `json:"operationId"`
	Tags        []string              `json:"tags"`
	Security    []map[string][]string `json:"security,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty"`
	Responses   map[string]Response   `json:"responses"`
}

type Parameter struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Required bool   `json:"required,omitempty"`
	Schema   Schema `json:"schema"`
}

type Schema struct {
	Type string `json:"type"`
}

type Response struct {
	Description string `json:"description"`
}

type Components struct {
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes"`
}

type SecurityScheme struct {
	Type string `json:"type"`
	In   string `json:"in"`
	Name string `json:"name"`
}

var session = []map[string][]string{{"SessionCookie": {}}}

func resp(pairs ...string) map[string]Response {
	out := make(map[string]Response, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[pairs[i]] = Response{Description: pairs[i+1]}
	}
	return out
}

func query(names ...string) []Parameter {
	out := make([]Parameter, 0, len(names))
	for _, n := range names {
		t := "string"
		if n == "limit" || n == "offset" {
			t = "integer"
		}
		out = append(out, Parameter{Name: n, In: "query", Schema: Schema{Type: t}})
	}
	return out
}

func path(name string) Parameter {
	return Parameter{Name: name, In: "path", Required: true, Schema: Schema{Type: "string"}}
}

// Build describes every public route.
func Build() Document {
	return Document{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       "Member Dashboard API",
			Description: "Member sign-in, password change and dashboard data",
			Version:     "1.0.0",
		},
		Components: Components{SecuritySchemes: map[string]SecurityScheme{
			"SessionCookie": {Type: "apiKey", In: "cookie", Name: "member_session"},
		}},
		Paths: map[string]map[string]Operation{
			"/healthz": {"get": {Summary: "Liveness", OperationID: "healthz", Tags: []string{"Health"},
				Responses: resp("200", "Process is up")}},
			"/readyz": {"get": {Summary: "Readiness", OperationID: "readyz", Tags: []string{"Health"},
				Responses: resp("200", "Dependencies reachable", "503", "A dependency is down")}},
			"/auth/v1/login": {"post": {Summary: "Sign in with a member number", OperationID: "login", Tags: []string{"Auth"},
				Responses: resp("200", "Signed in; session cookie set", "400", "Invalid body", "401", "Invalid credentials",
					"404", "Unknown member number", "429", "Too many attempts")}},
			"/auth/v1/logout": {"post": {Summary: "Sign out", OperationID: "logout", Tags: []string{"Auth"},
				Responses: resp("204", "Session cleared")}},
			"/auth/v1/me": {"get": {Summary: "Current member, roles and tabs", OperationID: "me", Tags: []string{"Auth"}, Security: session,
				Responses: resp("200", "Current member", "401", "No session")}},
			"/auth/v1/password/change": {"post": {Summary: "Change password", OperationID: "changePassword", Tags: []string{"Auth"}, Security: session,
				Responses: resp("200", "Password changed; sign in again", "400", "Validation failed", "401", "No session",
					"409", "Change already in progress", "422", "Rejected by the credential store", "429", "Too many attempts",
					"502", "Credential store error")}},
			"/dashboard/v1/tabs/{tab}": {"get": {Summary: "Tab access check", OperationID: "tabAccess", Tags: []string{"Dashboard"}, Security: session,
				Parameters: []Parameter{path("tab")}, Responses: resp("200", "Access decision")}},
			"/dashboard/v1/members": {"get": {Summary: "List visible members", OperationID: "listMembers", Tags: []string{"Dashboard"}, Security: session,
				Parameters: query("search", "limit", "offset"), Responses: resp("200", "Members", "403", "Tab not allowed")}},
			"/dashboard/v1/members/family": {"get": {Summary: "Members with a family member on record", OperationID: "familyMembers", Tags: []string{"Dashboard"}, Security: session,
				Parameters: query("search", "limit", "offset"), Responses: resp("200", "Members", "403", "Tab not allowed")}},
			"/dashboard/v1/members/{id}": {"patch": {Summary: "Update a member profile", OperationID: "updateMember", Tags: []string{"Dashboard"}, Security: session,
				Parameters: []Parameter{path("id")}, Responses: resp("200", "Updated member", "400", "Invalid body", "403", "Not your member", "404", "Unknown member")}},
			"/dashboard/v1/system/audit-logs": {"get": {Summary: "Audit trail", OperationID: "auditLogs", Tags: []string{"System"}, Security: session,
				Parameters: query("limit"), Responses: resp("200", "Audit entries", "403", "Admins only")}},
			"/dashboard/v1/system/monitoring-logs": {"get": {Summary: "Monitoring events", OperationID: "monitoringLogs", Tags: []string{"System"}, Security: session,
				Parameters: query("severity", "limit"), Responses: resp("200", "Monitoring entries", "400", "Unknown severity", "403", "Admins only")}},
		},
	}
}

// Handler serves the document as JSON.
func Handler() http.Handler {
	doc := Build()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, doc)
	})
}
