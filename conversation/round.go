// Package conversation drives the bounded round-robin exchange among a fixed
// participant list. The round is a small state machine: it runs speaker turns
// in strict rotation until a termination phrase appears or the round cap is
// exhausted, converting agent failures into fallback messages instead of
// propagating them.
package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fusionworks/fusioncoder/core"
	"github.com/fusionworks/fusioncoder/logging"
)

// Sentinel phrases that terminate a round as soon as a message contains one.
const (
	SentinelTaskComplete     = "TASK COMPLETE"
	SentinelWorkflowFinished = "WORKFLOW FINISHED"
)

// DefaultMaxRounds caps rounds whose definition supplies no explicit limit.
const DefaultMaxRounds = 10

// TerminationReason records why a round ended.
type TerminationReason string

const (
	// ReasonPredicate means a message contained a termination phrase.
	ReasonPredicate TerminationReason = "predicate"
	// ReasonRoundLimit means the cap was exhausted first. This is not an
	// error, only an incomplete outcome flagged in metadata.
	ReasonRoundLimit TerminationReason = "round_limit"
)

// StepKind tags the outcome of one speaker turn.
type StepKind int

const (
	// StepMessage is a successful agent contribution.
	StepMessage StepKind = iota
	// StepFallback is a degraded canned contribution substituted for a
	// failed agent call.
	StepFallback
	// StepSkipped is a failed turn with no fallback coverage; the round
	// continues with the next participant.
	StepSkipped
)

// StepOutcome is the tagged result of a single turn. The round loop switches
// on Kind instead of using exceptions for control flow.
type StepOutcome struct {
	Kind    StepKind
	Message core.ConversationMessage // set for StepMessage and StepFallback
	Failure *core.WorkflowError      // set for StepFallback and StepSkipped
}

// FallbackFunc supplies a degraded response for a failed role, or an error
// when the role has no coverage.
type FallbackFunc func(role core.Role, cause error) (string, error)

// Round executes one bounded conversation. A Round is single-use and not
// goroutine-safe; each workflow instance owns its own.
type Round struct {
	participants []core.Agent
	maxRounds    int
	sentinels    []string
	fallback     FallbackFunc
	logger       logging.Logger
	now          func() time.Time
}

// Option customizes a Round.
type Option func(*Round)

// WithMaxRounds sets the speaker turn cap. Values below 1 are ignored.
func WithMaxRounds(n int) Option {
	return func(r *Round) {
		if n > 0 {
			r.maxRounds = n
		}
	}
}

// WithSentinels replaces the default termination phrases.
func WithSentinels(phrases ...string) Option {
	return func(r *Round) { r.sentinels = phrases }
}

// WithFallback installs the degraded-response supplier used when an agent
// call fails.
func WithFallback(f FallbackFunc) Option {
	return func(r *Round) { r.fallback = f }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Round) { r.logger = logging.OrNoOp(l) }
}

// New constructs a Round over a non-empty participant list. The list order is
// the speaking order; turn selection is strictly round-robin with no
// scheduler randomness.
func New(participants []core.Agent, opts ...Option) (*Round, error) {
	if len(participants) == 0 {
		return nil, errors.New("conversation requires at least one participant")
	}
	r := &Round{
		participants: participants,
		maxRounds:    DefaultMaxRounds,
		sentinels:    []string{SentinelTaskComplete, SentinelWorkflowFinished},
		logger:       logging.NoOpLogger{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Outcome is the terminal result of a round.
type Outcome struct {
	Transcript core.Transcript
	Reason     TerminationReason
	Turns      int
	Failures   []core.WorkflowError
	Degraded   bool // at least one fallback message was substituted
}

// Run drives the round to termination. Agent failures never surface as an
// error; the only error returns are deadline expiry and cancellation, both
// checked at turn boundaries. On error the partial transcript is discarded.
func (r *Round) Run(ctx context.Context, task core.TaskType, prompt string) (Outcome, error) {
	var out Outcome

	for turn := 0; turn < r.maxRounds; turn++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, boundaryErr(err)
		}

		agent := r.participants[turn%len(r.participants)]
		step := r.step(ctx, agent, task, prompt, turn, out.Transcript)

		// A turn that died with the context is a workflow timeout, not
		// an agent failure.
		if err := ctx.Err(); err != nil {
			return Outcome{}, boundaryErr(err)
		}

		out.Turns = turn + 1
		switch step.Kind {
		case StepMessage:
			out.Transcript = append(out.Transcript, step.Message)
		case StepFallback:
			out.Transcript = append(out.Transcript, step.Message)
			out.Failures = append(out.Failures, *step.Failure)
			out.Degraded = true
		case StepSkipped:
			out.Failures = append(out.Failures, *step.Failure)
			continue
		}

		if r.terminal(step.Message.Content) {
			out.Reason = ReasonPredicate
			return out, nil
		}
	}

	out.Reason = ReasonRoundLimit
	return out, nil
}

// step obtains one agent's contribution and converts any failure into a
// tagged outcome.
func (r *Round) step(ctx context.Context, agent core.Agent, task core.TaskType, prompt string, turn int, transcript core.Transcript) StepOutcome {
	actx := core.AgentContext{
		Task:       task,
		Prompt:     prompt,
		Transcript: transcript.Clone(),
		Round:      turn,
	}

	content, err := agent.Respond(ctx, actx)
	if err == nil {
		return StepOutcome{
			Kind: StepMessage,
			Message: core.ConversationMessage{
				Speaker:   agent.Name(),
				Role:      agent.Role(),
				Content:   content,
				Round:     turn,
				Timestamp: r.now(),
			},
		}
	}

	failure := &core.AgentFailureError{Role: agent.Role(), Agent: agent.Name(), Cause: err}
	r.logger.Warn("agent turn failed", "agent", agent.Name(), "role", string(agent.Role()), "round", turn, "error", err.Error())

	if r.fallback != nil {
		text, fbErr := r.fallback(agent.Role(), failure)
		if fbErr == nil {
			return StepOutcome{
				Kind: StepFallback,
				Message: core.ConversationMessage{
					Speaker:   agent.Name(),
					Role:      agent.Role(),
					Content:   text,
					Round:     turn,
					Degraded:  true,
					Timestamp: r.now(),
				},
				Failure: &core.WorkflowError{Agent: agent.Name(), Message: failure.Error()},
			}
		}
		return StepOutcome{
			Kind:    StepSkipped,
			Failure: &core.WorkflowError{Agent: agent.Name(), Message: fbErr.Error()},
		}
	}

	return StepOutcome{
		Kind:    StepSkipped,
		Failure: &core.WorkflowError{Agent: agent.Name(), Message: failure.Error()},
	}
}

// terminal reports whether content contains one of the sentinel phrases.
func (r *Round) terminal(content string) bool {
	if content == "" {
		return false
	}
	for _, phrase := range r.sentinels {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}

func boundaryErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.ErrWorkflowTimeout
	}
	return core.ErrWorkflowCancelled
}
