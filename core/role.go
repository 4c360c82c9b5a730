package core

// Role identifies the specialization an agent fills inside a conversation.
type Role string

const (
	// RoleOrchestrator coordinates but does not contribute artifact content.
	RoleOrchestrator Role = "orchestrator"
	// RoleUserProxy is the fixed facilitator present in every conversation.
	// It does not count toward the complexity-driven participant set.
	RoleUserProxy Role = "user_proxy"
	// RoleArchitect contributes design structure.
	RoleArchitect Role = "architect"
	// RoleDataCollector gathers supporting context and references.
	RoleDataCollector Role = "data_collector"
	// RoleProcessor produces the primary artifact (code, plan).
	RoleProcessor Role = "processor"
	// RoleReviewer critiques the processor's output.
	RoleReviewer Role = "reviewer"
	// RoleTester generates validation steps for the artifact.
	RoleTester Role = "tester"
)

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOrchestrator, RoleUserProxy, RoleArchitect, RoleDataCollector, RoleProcessor, RoleReviewer, RoleTester:
		return true
	}
	return false
}
