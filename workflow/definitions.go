// Package workflow contains the orchestration engine: per-task workflow
// definitions, the orchestrator driving bounded conversation rounds, the
// confidence heuristic and the per-role fallback strategies.
package workflow

import (
	"github.com/fusionworks/fusioncoder/core"
)

// Definition is the ordered recipe resolved for a task type: which roles
// participate per complexity tier, the round cap and the prompt template
// seeding the conversation.
type Definition struct {
	Task           core.TaskType
	MaxRounds      int
	PromptTemplate string
	// PrimaryRole is the role whose last message carries the main artifact.
	PrimaryRole core.Role
}

// Round caps per task type. Policy constants: finite, overridable via
// definition overrides, not semantically meaningful beyond parity.
const (
	generationRounds   = 15
	optimizationRounds = 10
	reviewRounds       = 10
	architectureRounds = 10
	deploymentRounds   = 12
)

// Definitions returns the fixed recipe table keyed by task type.
func Definitions() map[core.TaskType]Definition {
	return map[core.TaskType]Definition{
		core.TaskCodeGeneration: {
			Task:        core.TaskCodeGeneration,
			MaxRounds:   generationRounds,
			PrimaryRole: core.RoleProcessor,
			PromptTemplate: "Collaborate to produce working code for the following task.\n\n{{.Seed}}\n\n" +
				"Reply with fenced code blocks. Say TASK COMPLETE when the final code is agreed.",
		},
		core.TaskCodeOptimization: {
			Task:        core.TaskCodeOptimization,
			MaxRounds:   optimizationRounds,
			PrimaryRole: core.RoleProcessor,
			PromptTemplate: "Collaborate to optimize the code below without changing its behavior.\n\n{{.Seed}}\n\n" +
				"Reply with the optimized code in a fenced block. Say TASK COMPLETE when done.",
		},
		core.TaskCodeReview: {
			Task:        core.TaskCodeReview,
			MaxRounds:   reviewRounds,
			PrimaryRole: core.RoleReviewer,
			PromptTemplate: "Review the code below for correctness, clarity and safety.\n\n{{.Seed}}\n\n" +
				"State approved or a list of required changes. Say TASK COMPLETE when the review is final.",
		},
		core.TaskArchitectureDesign: {
			Task:        core.TaskArchitectureDesign,
			MaxRounds:   architectureRounds,
			PrimaryRole: core.RoleArchitect,
			PromptTemplate: "Produce a component-level design for the requirements below.\n\n{{.Seed}}\n\n" +
				"Name each component and its responsibility. Say TASK COMPLETE when the design is agreed.",
		},
		core.TaskDeployment: {
			Task:        core.TaskDeployment,
			MaxRounds:   deploymentRounds,
			PrimaryRole: core.RoleProcessor,
			PromptTemplate: "Produce a step-by-step deployment plan.\n\n{{.Seed}}\n\n" +
				"Order the steps and call out rollback points. Say TASK COMPLETE when the plan is final.",
		},
	}
}

// participantOrder is the fixed speaking order; Participants filters it.
var participantOrder = []core.Role{
	core.RoleUserProxy,
	core.RoleArchitect,
	core.RoleDataCollector,
	core.RoleProcessor,
	core.RoleReviewer,
}

// Participants resolves the participant roles for a complexity tier. Tiers
// expand monotonically: low is {Processor}; medium adds Architect and
// DataCollector; high adds Reviewer. UserProxy is always present and does
// not count toward the complexity-driven set. The result is deterministic
// for a given (task, complexity) pair.
func (d Definition) Participants(c core.Complexity) []core.Role {
	include := map[core.Role]bool{
		core.RoleUserProxy: true,
		core.RoleProcessor: true,
	}
	switch c {
	case core.ComplexityMedium:
		include[core.RoleArchitect] = true
		include[core.RoleDataCollector] = true
	case core.ComplexityHigh:
		include[core.RoleArchitect] = true
		include[core.RoleDataCollector] = true
		include[core.RoleReviewer] = true
	}

	var roles []core.Role
	for _, r := range participantOrder {
		if include[r] {
			roles = append(roles, r)
		}
	}
	return roles
}
