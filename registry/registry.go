// Package registry holds the static role to agent descriptor mapping. The
// registry is populated at construction time and read-only afterwards, so it
// needs no locking even when shared across concurrent workflows.
package registry

import (
	"fmt"
	"sort"

	"github.com/fusionworks/fusioncoder/core"
)

// Registry maps roles to their agent descriptors.
type Registry struct {
	agents map[core.Role]core.AgentDescriptor
}

// New builds a registry with the default agent lineup. Descriptor overrides
// replace the default entry for their role.
func New(overrides ...core.AgentDescriptor) (*Registry, error) {
	agents := defaultAgents()
	for _, d := range overrides {
		if !d.Role.Valid() {
			return nil, fmt.Errorf("invalid role %q for agent %q", d.Role, d.Name)
		}
		if d.Name == "" {
			return nil, fmt.Errorf("agent descriptor for role %s has no name", d.Role)
		}
		agents[d.Role] = d
	}
	return &Registry{agents: agents}, nil
}

// Lookup returns the descriptor for a role.
func (r *Registry) Lookup(role core.Role) (core.AgentDescriptor, bool) {
	d, ok := r.agents[role]
	return d, ok
}

// Roles returns the registered roles in stable (sorted) order.
func (r *Registry) Roles() []core.Role {
	roles := make([]core.Role, 0, len(r.agents))
	for role := range r.agents {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// defaultAgents mirrors the built-in lineup: one descriptor per role with its
// capabilities and model tuning parameters.
func defaultAgents() map[core.Role]core.AgentDescriptor {
	return map[core.Role]core.AgentDescriptor{
		core.RoleUserProxy: {
			Role:         core.RoleUserProxy,
			Name:         "UserProxy",
			Description:  "Facilitates the conversation and signals completion",
			Capabilities: []string{"facilitation", "termination"},
			Parameters:   map[string]any{"temperature": 0.0},
		},
		core.RoleArchitect: {
			Role:         core.RoleArchitect,
			Name:         "SolutionArchitect",
			Description:  "Shapes component structure before implementation",
			Capabilities: []string{"architecture_design", "decomposition"},
			Parameters:   map[string]any{"model": "gpt-4", "temperature": 0.4},
		},
		core.RoleDataCollector: {
			Role:         core.RoleDataCollector,
			Name:         "DataCollector",
			Description:  "Gathers references, APIs and prior art for the task",
			Capabilities: []string{"research", "context_gathering"},
			Parameters:   map[string]any{"model": "gpt-4", "temperature": 0.5},
		},
		core.RoleProcessor: {
			Role:         core.RoleProcessor,
			Name:         "CodeProcessor",
			Description:  "Produces the primary artifact: code, designs or plans",
			Capabilities: []string{"code_generation", "optimization", "completion"},
			Parameters:   map[string]any{"model": "gpt-4", "temperature": 0.7, "streaming": true},
		},
		core.RoleReviewer: {
			Role:         core.RoleReviewer,
			Name:         "CodeReviewer",
			Description:  "Reviews output and suggests improvements",
			Capabilities: []string{"code_review", "best_practices"},
			Parameters:   map[string]any{"model": "gpt-4", "temperature": 0.5},
		},
		core.RoleTester: {
			Role:         core.RoleTester,
			Name:         "CodeTester",
			Description:  "Generates validation steps and test cases",
			Capabilities: []string{"test_generation", "validation"},
			Parameters:   map[string]any{"model": "gpt-4", "temperature": 0.5},
		},
	}
}
