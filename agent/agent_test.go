package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fusionworks/fusioncoder/core"
	"github.com/fusionworks/fusioncoder/model"
)

// MockAgent for asserting call expectations against the core.Agent contract.
type MockAgent struct {
	mock.Mock
	name string
	role core.Role
}

func NewMockAgent(name string, role core.Role) *MockAgent {
	return &MockAgent{name: name, role: role}
}

func (m *MockAgent) Name() string    { return m.name }
func (m *MockAgent) Role() core.Role { return m.role }

func (m *MockAgent) Respond(ctx context.Context, actx core.AgentContext) (string, error) {
	args := m.Called(ctx, actx)
	return args.String(0), args.Error(1)
}

func descFor(role core.Role, name string) core.AgentDescriptor {
	return core.AgentDescriptor{Role: role, Name: name, Description: "test agent"}
}

func TestScriptedAgentIdentity(t *testing.T) {
	a := NewScriptedDefault(descFor(core.RoleProcessor, "CodeProcessor"))
	assert.Equal(t, "CodeProcessor", a.Name())
	assert.Equal(t, core.RoleProcessor, a.Role())
}

func TestUserProxyScriptTerminates(t *testing.T) {
	a := NewScriptedDefault(descFor(core.RoleUserProxy, "UserProxy"))
	actx := core.AgentContext{
		Task:   core.TaskCodeGeneration,
		Prompt: "Write a fibonacci function.",
	}

	first, err := a.Respond(context.Background(), actx)
	require.NoError(t, err)
	assert.NotContains(t, first, "TASK COMPLETE")

	actx.Transcript = core.Transcript{{
		Speaker: "CodeProcessor",
		Role:    core.RoleProcessor,
		Content: "```python\ndef fib(n): ...\n```",
	}}
	second, err := a.Respond(context.Background(), actx)
	require.NoError(t, err)
	assert.Contains(t, second, "TASK COMPLETE")
}

func TestUserProxyScriptWaitsForPrimaryRole(t *testing.T) {
	a := NewScriptedDefault(descFor(core.RoleUserProxy, "UserProxy"))
	actx := core.AgentContext{
		Task:   core.TaskArchitectureDesign,
		Prompt: "Design a queue.",
		Transcript: core.Transcript{{
			Speaker: "CodeProcessor",
			Role:    core.RoleProcessor,
			Content: "Processed the task inputs.",
		}},
	}

	// Architecture tasks terminate on the architect, not the processor.
	out, err := a.Respond(context.Background(), actx)
	require.NoError(t, err)
	assert.NotContains(t, out, "TASK COMPLETE")

	actx.Transcript = append(actx.Transcript, core.ConversationMessage{
		Speaker: "SolutionArchitect",
		Role:    core.RoleArchitect,
		Content: "Proposed structure: ...",
	})
	out, err = a.Respond(context.Background(), actx)
	require.NoError(t, err)
	assert.Contains(t, out, "TASK COMPLETE")
}

func TestProcessorScriptEmitsFencedBlock(t *testing.T) {
	a := NewScriptedDefault(descFor(core.RoleProcessor, "CodeProcessor"))

	out, err := a.Respond(context.Background(), core.AgentContext{
		Task:   core.TaskCodeGeneration,
		Prompt: "Write a parser.\nTarget language: go",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "```go\n")
	assert.Contains(t, out, "```")

	out, err = a.Respond(context.Background(), core.AgentContext{
		Task:   core.TaskCodeGeneration,
		Prompt: "Write a parser.",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "```python\n")
}

func TestReviewerScriptApprovesAfterContribution(t *testing.T) {
	a := NewScriptedDefault(descFor(core.RoleReviewer, "CodeReviewer"))

	out, err := a.Respond(context.Background(), core.AgentContext{Task: core.TaskCodeReview})
	require.NoError(t, err)
	assert.NotContains(t, strings.ToLower(out), "approved")

	out, err = a.Respond(context.Background(), core.AgentContext{
		Task: core.TaskCodeReview,
		Transcript: core.Transcript{{
			Speaker: "CodeProcessor",
			Role:    core.RoleProcessor,
			Content: "```python\npass\n```",
		}},
	})
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "approved")
}

func TestScriptedAgentHonorsCancellation(t *testing.T) {
	a := NewScriptedDefault(descFor(core.RoleProcessor, "CodeProcessor"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Respond(ctx, core.AgentContext{Task: core.TaskCodeGeneration, Prompt: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCustomScript(t *testing.T) {
	a := NewScripted(descFor(core.RoleTester, "CodeTester"), func(actx core.AgentContext) (string, error) {
		return "test cases ready", nil
	})
	out, err := a.Respond(context.Background(), core.AgentContext{})
	require.NoError(t, err)
	assert.Equal(t, "test cases ready", out)
}

func TestModelAgentBuildsRequest(t *testing.T) {
	mock := model.NewMockModel("test-model")
	a := NewModelAgent(descFor(core.RoleProcessor, "CodeProcessor"), mock)

	out, err := a.Respond(context.Background(), core.AgentContext{
		Task:   core.TaskCodeGeneration,
		Prompt: "Write a fibonacci function.",
		Transcript: core.Transcript{
			{Speaker: "UserProxy", Role: core.RoleUserProxy, Content: "Starting."},
			{Speaker: "CodeProcessor", Role: core.RoleProcessor, Content: "Draft one."},
		},
	})
	require.NoError(t, err)
	// The mock echoes the last user message, which carries speaker attribution.
	assert.Equal(t, "Mock response to: UserProxy: Starting.", out)
}

func TestModelAgentPropagatesFailure(t *testing.T) {
	mock := model.NewMockModel("test-model")
	mock.FailWith(errors.New("rate limited"))
	a := NewModelAgent(descFor(core.RoleProcessor, "CodeProcessor"), mock)

	_, err := a.Respond(context.Background(), core.AgentContext{Prompt: "x"})
	assert.EqualError(t, err, "rate limited")
}

func TestMockAgentContract(t *testing.T) {
	m := NewMockAgent("Mocked", core.RoleProcessor)
	m.On("Respond", mock.Anything, mock.Anything).Return("canned", nil).Once()

	out, err := m.Respond(context.Background(), core.AgentContext{Task: core.TaskCodeGeneration})
	require.NoError(t, err)
	assert.Equal(t, "canned", out)
	m.AssertExpectations(t)
}

func TestModelAgentRespectsDeadline(t *testing.T) {
	mock := model.NewMockModel("test-model")
	a := NewModelAgent(descFor(core.RoleProcessor, "CodeProcessor"), mock)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := a.Respond(ctx, core.AgentContext{Prompt: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
