package core

import "context"

// AgentDescriptor carries the static identity and tuning of a registered
// agent. Descriptors are created at orchestrator construction time and never
// mutated afterwards.
type AgentDescriptor struct {
	Role         Role           `json:"role"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Capabilities []string       `json:"capabilities"`
	Parameters   map[string]any `json:"parameters"`
}

// AgentContext is the input handed to an agent for one speaking turn.
// The transcript is shared read-only; agents must not mutate it.
type AgentContext struct {
	Task       TaskType   // workflow recipe being executed
	Prompt     string     // rendered task prompt seeding the conversation
	Transcript Transcript // messages produced so far, oldest first
	Round      int        // zero-based index of this speaking turn
}

// Agent is the opaque capability behind each conversation participant. The
// orchestrator never branches on the concrete implementation: scripted
// responders, remote model calls and test doubles all satisfy the same
// contract.
//
// Respond must honor ctx cancellation; a failure surfaces as err and is
// handled by the fallback layer, never by panicking.
type Agent interface {
	// Name returns the human-readable identifier recorded as message speaker.
	Name() string
	// Role returns the specialization this agent fills.
	Role() Role
	// Respond produces this agent's contribution for the given turn.
	Respond(ctx context.Context, actx AgentContext) (string, error)
}
