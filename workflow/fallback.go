package workflow

import (
	"github.com/fusionworks/fusioncoder/core"
	"github.com/fusionworks/fusioncoder/logging"
)

// FallbackManager supplies one canned degraded output per covered role,
// invoked when an agent call fails. It mutates no shared state: it only logs
// and returns a value.
type FallbackManager struct {
	logger  logging.Logger
	outputs map[core.Role]string
}

// NewFallbackManager builds the manager with the built-in degraded outputs.
func NewFallbackManager(logger logging.Logger) *FallbackManager {
	return &FallbackManager{
		logger: logging.OrNoOp(logger),
		outputs: map[core.Role]string{
			core.RoleArchitect: "Fallback design with three components:\n" +
				"1. API layer - accepts and validates requests\n" +
				"2. Service core - executes the task logic\n" +
				"3. Storage - persists inputs and results",
			core.RoleProcessor: "Producing a minimal viable implementation only; " +
				"the full solution could not be generated.",
			core.RoleReviewer:      "Review degraded: basic syntax check only, no semantic review performed.",
			core.RoleDataCollector: "Context gathering failed; serving prior results from the fallback cache.",
		},
	}
}

// Covers reports whether a role has a degraded output registered.
func (m *FallbackManager) Covers(role core.Role) bool {
	_, ok := m.outputs[role]
	return ok
}

// Fallback returns the canned degraded output for a failing role. Roles
// without coverage yield a NoFallbackError; the caller records it and skips
// that participant's turn without aborting the rest.
func (m *FallbackManager) Fallback(role core.Role, cause error) (string, error) {
	out, ok := m.outputs[role]
	if !ok {
		return "", &core.NoFallbackError{Role: role}
	}
	m.logger.Warn("substituting fallback output", "role", string(role), "cause", cause.Error())
	return out, nil
}
