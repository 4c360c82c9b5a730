package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fusionworks/fusioncoder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAgent responds with a fixed script, optionally failing every call.
type stubAgent struct {
	name    string
	role    core.Role
	reply   func(actx core.AgentContext) string
	err     error
	calls   int
	respond func(ctx context.Context) // hook for blocking behavior
}

func (s *stubAgent) Name() string    { return s.name }
func (s *stubAgent) Role() core.Role { return s.role }

func (s *stubAgent) Respond(ctx context.Context, actx core.AgentContext) (string, error) {
	s.calls++
	if s.respond != nil {
		s.respond(ctx)
	}
	if s.err != nil {
		return "", s.err
	}
	if s.reply != nil {
		return s.reply(actx), nil
	}
	return "ack", nil
}

func fixedReply(text string) func(core.AgentContext) string {
	return func(core.AgentContext) string { return text }
}

func TestRound_RoundLimit(t *testing.T) {
	a := &stubAgent{name: "A", role: core.RoleProcessor, reply: fixedReply("working")}
	b := &stubAgent{name: "B", role: core.RoleReviewer, reply: fixedReply("still looking")}

	round, err := New([]core.Agent{a, b}, WithMaxRounds(5))
	require.NoError(t, err)

	out, err := round.Run(context.Background(), core.TaskCodeGeneration, "do it")
	require.NoError(t, err)

	assert.Equal(t, ReasonRoundLimit, out.Reason)
	assert.Equal(t, 5, out.Turns)
	assert.Len(t, out.Transcript, 5)
	// Strict rotation: A,B,A,B,A.
	assert.Equal(t, 3, a.calls)
	assert.Equal(t, 2, b.calls)
}

func TestRound_PredicateTerminatesMidCycle(t *testing.T) {
	a := &stubAgent{name: "A", role: core.RoleProcessor, reply: fixedReply("draft ready. TASK COMPLETE")}
	b := &stubAgent{name: "B", role: core.RoleReviewer, reply: fixedReply("unreached")}

	round, err := New([]core.Agent{a, b}, WithMaxRounds(10))
	require.NoError(t, err)

	out, err := round.Run(context.Background(), core.TaskCodeGeneration, "do it")
	require.NoError(t, err)

	assert.Equal(t, ReasonPredicate, out.Reason)
	assert.Equal(t, 1, out.Turns)
	assert.Zero(t, b.calls)
}

func TestRound_SecondSentinelRecognized(t *testing.T) {
	a := &stubAgent{name: "A", role: core.RoleUserProxy, reply: fixedReply("WORKFLOW FINISHED")}

	round, err := New([]core.Agent{a})
	require.NoError(t, err)

	out, err := round.Run(context.Background(), core.TaskCodeReview, "review")
	require.NoError(t, err)
	assert.Equal(t, ReasonPredicate, out.Reason)
}

func TestRound_FailureWithFallbackContinues(t *testing.T) {
	failing := &stubAgent{name: "Arch", role: core.RoleArchitect, err: errors.New("model unavailable")}
	proc := &stubAgent{name: "Proc", role: core.RoleProcessor, reply: fixedReply("TASK COMPLETE")}

	round, err := New(
		[]core.Agent{failing, proc},
		WithFallback(func(role core.Role, cause error) (string, error) {
			return "degraded design", nil
		}),
	)
	require.NoError(t, err)

	out, err := round.Run(context.Background(), core.TaskCodeGeneration, "go")
	require.NoError(t, err)

	require.Len(t, out.Transcript, 2)
	assert.True(t, out.Transcript[0].Degraded)
	assert.Equal(t, "degraded design", out.Transcript[0].Content)
	assert.True(t, out.Degraded)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, "Arch", out.Failures[0].Agent)
	assert.Equal(t, ReasonPredicate, out.Reason)
}

func TestRound_FailureWithoutCoverageSkipsTurnOnly(t *testing.T) {
	failing := &stubAgent{name: "Tester", role: core.RoleTester, err: errors.New("boom")}
	proc := &stubAgent{name: "Proc", role: core.RoleProcessor, reply: fixedReply("TASK COMPLETE")}

	round, err := New(
		[]core.Agent{failing, proc},
		WithFallback(func(role core.Role, cause error) (string, error) {
			return "", &core.NoFallbackError{Role: role}
		}),
	)
	require.NoError(t, err)

	out, err := round.Run(context.Background(), core.TaskCodeGeneration, "go")
	require.NoError(t, err)

	// The failing turn contributed no message but the other participant
	// still spoke.
	require.Len(t, out.Transcript, 1)
	assert.Equal(t, "Proc", out.Transcript[0].Speaker)
	require.Len(t, out.Failures, 1)
	assert.Contains(t, out.Failures[0].Message, "no fallback available")
	assert.False(t, out.Degraded)
}

func TestRound_NoFallbackConfigured(t *testing.T) {
	failing := &stubAgent{name: "X", role: core.RoleDataCollector, err: errors.New("down")}

	round, err := New([]core.Agent{failing}, WithMaxRounds(2))
	require.NoError(t, err)

	out, err := round.Run(context.Background(), core.TaskCodeGeneration, "go")
	require.NoError(t, err)
	assert.Empty(t, out.Transcript)
	assert.Len(t, out.Failures, 2)
	assert.Equal(t, ReasonRoundLimit, out.Reason)
}

func TestRound_DeadlineDiscardsTranscript(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	slow := &stubAgent{
		name: "Slow", role: core.RoleProcessor,
		reply: fixedReply("thinking"),
		respond: func(ctx context.Context) {
			<-ctx.Done()
		},
	}

	round, err := New([]core.Agent{slow}, WithMaxRounds(100))
	require.NoError(t, err)

	out, err := round.Run(ctx, core.TaskCodeGeneration, "go")
	assert.ErrorIs(t, err, core.ErrWorkflowTimeout)
	assert.Empty(t, out.Transcript)
}

func TestRound_CancellationAtBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &stubAgent{name: "A", role: core.RoleProcessor}
	round, err := New([]core.Agent{a})
	require.NoError(t, err)

	_, err = round.Run(ctx, core.TaskCodeGeneration, "go")
	assert.ErrorIs(t, err, core.ErrWorkflowCancelled)
	assert.Zero(t, a.calls)
}

func TestRound_TranscriptSnapshotPerTurn(t *testing.T) {
	var seen []int
	a := &stubAgent{
		name: "A", role: core.RoleProcessor,
		reply: func(actx core.AgentContext) string {
			seen = append(seen, len(actx.Transcript))
			return "msg"
		},
	}

	round, err := New([]core.Agent{a}, WithMaxRounds(3))
	require.NoError(t, err)

	_, err = round.Run(context.Background(), core.TaskCodeGeneration, "go")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestNew_RequiresParticipants(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
