// Package agent defines the agent roles, the executor contract, and the
// registry mapping roles to executor instances.
package agent

// Role identifies an agent in the workflow.
type Role string

const (
	RoleSupervisor Role = "supervisor"
	RoleResearcher Role = "researcher"
	RoleAnalyst    Role = "analyst"
	RoleWriter     Role = "writer"
	RoleReviewer   Role = "reviewer"
)

// Workers returns the non-supervisor roles in pipeline order
// (gather, analyze, produce, verify).
func Workers() []Role {
	return []Role{RoleResearcher, RoleAnalyst, RoleWriter, RoleReviewer}
}

// capabilities are static introspection tags per role. They are reported
// to callers and included in decision context, never consulted for routing.
var capabilities = map[Role][]string{
	RoleSupervisor: {"task_routing", "workflow_management", "quality_control"},
	RoleResearcher: {"data_gathering", "fact_checking", "source_verification"},
	RoleAnalyst:    {"data_analysis", "pattern_recognition", "insights"},
	RoleWriter:     {"content_creation", "documentation", "storytelling"},
	RoleReviewer:   {"quality_assurance", "validation", "approval"},
}

// Capabilities returns the declared capability tags for a role.
func Capabilities(r Role) []string {
	return append([]string(nil), capabilities[r]...)
}

// Valid reports whether r names a known role.
func Valid(r Role) bool {
	_, ok := capabilities[r]
	return ok
}
