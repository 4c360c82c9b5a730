package agent

import (
	"context"
	"fmt"

	"github.com/fusionworks/fusioncoder/core"
	"github.com/fusionworks/fusioncoder/model"
)

// ModelAgent drives a model.Model for its turns. The descriptor supplies
// identity; the system instructions are derived from the descriptor's
// description so each role prompts the model differently.
type ModelAgent struct {
	desc core.AgentDescriptor
	mdl  model.Model
}

// NewModelAgent binds a model to a descriptor.
func NewModelAgent(desc core.AgentDescriptor, mdl model.Model) *ModelAgent {
	return &ModelAgent{desc: desc, mdl: mdl}
}

// Name implements core.Agent.
func (a *ModelAgent) Name() string { return a.desc.Name }

// Role implements core.Agent.
func (a *ModelAgent) Role() core.Role { return a.desc.Role }

// Respond implements core.Agent. The prompt opens the exchange as a user
// message; earlier transcript turns are replayed with speaker attribution,
// this agent's own turns as assistant messages.
func (a *ModelAgent) Respond(ctx context.Context, actx core.AgentContext) (string, error) {
	req := model.Request{
		System: fmt.Sprintf("You are %s. %s Contribute your specialty; do not repeat other participants.",
			a.desc.Name, a.desc.Description),
		Messages: []model.Message{{Role: "user", Content: actx.Prompt}},
	}
	for _, m := range actx.Transcript {
		role := "user"
		content := fmt.Sprintf("%s: %s", m.Speaker, m.Content)
		if m.Speaker == a.desc.Name {
			role = "assistant"
			content = m.Content
		}
		req.Messages = append(req.Messages, model.Message{Role: role, Content: content})
	}

	resp, err := a.mdl.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
