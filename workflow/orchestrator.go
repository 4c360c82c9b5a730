package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fusionworks/fusioncoder/conversation"
	"github.com/fusionworks/fusioncoder/core"
	"github.com/fusionworks/fusioncoder/extract"
	"github.com/fusionworks/fusioncoder/internal/util"
	"github.com/fusionworks/fusioncoder/logging"
	"github.com/fusionworks/fusioncoder/registry"
)

// ErrWorkflowRunning is returned when a workflow ID is re-submitted while
// its first execution is still in flight.
var ErrWorkflowRunning = errors.New("workflow already running")

// ErrUnknownWorkflow is returned by Cancel and Status for IDs this
// orchestrator never saw.
var ErrUnknownWorkflow = errors.New("unknown workflow id")

// DefaultTimeout is the wall-clock deadline applied to workflows whose
// caller context carries none.
const DefaultTimeout = 2 * time.Minute

// AgentProvider supplies the concrete agent for a descriptor. It lets
// callers bind scripted responders, remote models or test doubles without
// the orchestrator branching on implementation type.
type AgentProvider func(desc core.AgentDescriptor) core.Agent

// CloudDispatcher is the optional cloud-first path tried before local
// orchestration. Implemented by the cloud package.
type CloudDispatcher interface {
	// Eligible reports whether the request may be served by the cloud path.
	Eligible(req core.WorkflowRequest) bool
	// Dispatch attempts the cloud call and returns the derived outputs.
	Dispatch(ctx context.Context, req core.WorkflowRequest) (core.Outputs, error)
}

// Orchestrator is the top-level workflow engine. It resolves a definition
// per task type, assembles participants by complexity, drives one
// conversation round per request and derives the structured result.
//
// Orchestrators are safe for concurrent use: each workflow owns an isolated
// transcript and round; the instance table is the only internal shared state.
type Orchestrator struct {
	registry *registry.Registry
	provider AgentProvider
	fallback *FallbackManager
	cloud    CloudDispatcher
	defs     map[core.TaskType]Definition
	logger   logging.Logger
	timeout  time.Duration
	batchCap int

	mu        sync.Mutex
	instances map[string]*instance
}

// instance tracks one workflow's lifecycle for cancellation and idempotent
// re-delivery.
type instance struct {
	status core.Status
	cancel context.CancelFunc
	result *core.WorkflowResult
}

// Options configures an Orchestrator.
type Options struct {
	// Registry overrides the default agent registry.
	Registry *registry.Registry
	// Provider binds descriptors to concrete agents. Required.
	Provider AgentProvider
	// Cloud enables the cloud-first dispatch path when non-nil.
	Cloud CloudDispatcher
	// Definitions overrides the built-in recipe table (round caps etc.).
	Definitions map[core.TaskType]Definition
	// Timeout is the per-workflow wall-clock deadline.
	Timeout time.Duration
	// BatchConcurrency caps parallel workflows in CreateBatch. Zero means
	// unbounded.
	BatchConcurrency int
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// New constructs an Orchestrator.
func New(optFns ...func(o *Options)) (*Orchestrator, error) {
	opts := Options{Timeout: DefaultTimeout}
	for _, fn := range optFns {
		fn(&opts)
	}

	reg := opts.Registry
	if reg == nil {
		var err error
		if reg, err = registry.New(); err != nil {
			return nil, err
		}
	}
	if opts.Provider == nil {
		return nil, errors.New("orchestrator requires an agent provider")
	}
	defs := opts.Definitions
	if defs == nil {
		defs = Definitions()
	}
	logger := logging.OrNoOp(opts.Logger)

	return &Orchestrator{
		registry:  reg,
		provider:  opts.Provider,
		fallback:  NewFallbackManager(logger),
		cloud:     opts.Cloud,
		defs:      defs,
		logger:    logger,
		timeout:   opts.Timeout,
		batchCap:  opts.BatchConcurrency,
		instances: make(map[string]*instance),
	}, nil
}

// CreateWorkflow executes one request end to end and returns its terminal
// result. Unsupported task types fail fast before any agent is invoked.
// Re-submitting an ID that already finished returns the stored result, so
// at-least-once delivery of the same workflow is safe.
func (o *Orchestrator) CreateWorkflow(ctx context.Context, req core.WorkflowRequest) (core.WorkflowResult, error) {
	if err := req.Validate(); err != nil {
		return core.WorkflowResult{}, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	inst, prior, err := o.admit(req.ID, cancel)
	if err != nil {
		return core.WorkflowResult{}, err
	}
	if prior != nil {
		return *prior, nil
	}

	o.logger.Info("workflow started", "workflow_id", req.ID, "task", string(req.Task), "complexity", string(req.Complexity))
	started := time.Now()

	result := o.execute(ctx, req)
	result.Metadata.StartedAt = started
	result.Metadata.ExecutionTime = time.Since(started)

	o.finish(inst, &result)
	o.logger.Info("workflow finished", "workflow_id", req.ID, "status", string(result.Status), "confidence", result.Confidence)
	return result, nil
}

// admit registers a new instance or resolves duplicate delivery. Returns the
// stored result for IDs that already reached a terminal state.
func (o *Orchestrator) admit(id string, cancel context.CancelFunc) (*instance, *core.WorkflowResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if existing, ok := o.instances[id]; ok {
		if existing.result != nil {
			return nil, existing.result, nil
		}
		return nil, nil, fmt.Errorf("%w: %s", ErrWorkflowRunning, id)
	}

	inst := &instance{status: core.StatusRunning, cancel: cancel}
	o.instances[id] = inst
	return inst, nil, nil
}

func (o *Orchestrator) finish(inst *instance, result *core.WorkflowResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	inst.status = result.Status
	inst.result = result
	inst.cancel = nil
}

// execute runs the cloud-first path when eligible, then the local
// conversation path.
func (o *Orchestrator) execute(ctx context.Context, req core.WorkflowRequest) core.WorkflowResult {
	if o.cloud != nil && o.cloud.Eligible(req) {
		outputs, err := o.cloud.Dispatch(ctx, req)
		if err == nil {
			return core.WorkflowResult{
				WorkflowID: req.ID,
				Task:       req.Task,
				Status:     core.StatusCompleted,
				Outputs:    outputs,
				Confidence: Score(Signals{ContributingAgents: 1, Complexity: req.Complexity}),
				Metadata:   core.Metadata{CloudServed: true},
			}
		}
		o.logger.Warn("cloud dispatch failed, falling back to local orchestration", "workflow_id", req.ID, "error", err.Error())
	}
	return o.runLocal(ctx, req)
}

// runLocal assembles the participants and drives one conversation round.
func (o *Orchestrator) runLocal(ctx context.Context, req core.WorkflowRequest) core.WorkflowResult {
	def := o.defs[req.Task]
	agents, err := o.assemble(def, req.Complexity)
	if err != nil {
		return failedResult(req, err)
	}

	prompt, err := util.RenderTemplate(def.PromptTemplate, map[string]string{
		"Seed": req.Payload.Seed(),
		"Tier": string(req.Complexity),
	})
	if err != nil {
		return failedResult(req, fmt.Errorf("render prompt: %w", err))
	}

	round, err := conversation.New(
		agents,
		conversation.WithMaxRounds(def.MaxRounds),
		conversation.WithFallback(o.fallback.Fallback),
		conversation.WithLogger(o.logger),
	)
	if err != nil {
		return failedResult(req, err)
	}

	outcome, err := round.Run(ctx, req.Task, prompt)
	if errors.Is(err, core.ErrWorkflowCancelled) {
		return core.WorkflowResult{
			WorkflowID: req.ID,
			Task:       req.Task,
			Status:     core.StatusCancelled,
			Errors:     []core.WorkflowError{{Message: err.Error()}},
		}
	}
	if err != nil {
		// Deadline expiry: the partial transcript was discarded by the
		// round; only the error survives.
		return failedResult(req, err)
	}

	return o.assembleResult(req, def, outcome)
}

// assemble resolves descriptors and concrete agents for the participant
// roles of this complexity tier.
func (o *Orchestrator) assemble(def Definition, c core.Complexity) ([]core.Agent, error) {
	roles := def.Participants(c)
	agents := make([]core.Agent, 0, len(roles))
	for _, role := range roles {
		desc, ok := o.registry.Lookup(role)
		if !ok {
			return nil, fmt.Errorf("no agent registered for role %s", role)
		}
		agent := o.provider(desc)
		if agent == nil {
			return nil, fmt.Errorf("agent provider returned nil for role %s", role)
		}
		agents = append(agents, agent)
	}
	return agents, nil
}

// assembleResult extracts artifacts, computes confidence and derives the
// terminal status from a finished round.
func (o *Orchestrator) assembleResult(req core.WorkflowRequest, def Definition, outcome conversation.Outcome) core.WorkflowResult {
	result := core.WorkflowResult{
		WorkflowID: req.ID,
		Task:       req.Task,
		Errors:     outcome.Failures,
		Metadata: core.Metadata{
			Contributions: contributions(outcome.Transcript),
			Rounds:        outcome.Turns,
			RoundLimitHit: outcome.Reason == conversation.ReasonRoundLimit,
		},
	}

	if len(outcome.Transcript) == 0 {
		result.Status = core.StatusFailed
		if len(result.Errors) == 0 {
			result.Errors = []core.WorkflowError{{Message: "conversation produced no output"}}
		}
		result.Confidence = Score(Signals{ErrorCount: len(result.Errors), Complexity: req.Complexity})
		return result
	}

	result.Outputs = deriveOutputs(req, def, outcome.Transcript)
	result.Confidence = Score(Signals{
		ErrorCount:         len(outcome.Failures),
		ContributingAgents: len(outcome.Transcript.Speakers()),
		Complexity:         req.Complexity,
		ReviewerApproved:   reviewerApproved(outcome.Transcript),
	})

	if len(outcome.Failures) > 0 || outcome.Degraded {
		result.Status = core.StatusPartial
	} else {
		result.Status = core.StatusCompleted
	}
	return result
}

// deriveOutputs runs extraction over the primary role's last message and
// collects reviewer notes when a reviewer participated.
func deriveOutputs(req core.WorkflowRequest, def Definition, transcript core.Transcript) core.Outputs {
	primary, ok := transcript.LastByRole(def.PrimaryRole)
	if !ok {
		// Degraded rounds may never reach the primary role; fall back to
		// the last message overall.
		primary = transcript[len(transcript)-1]
	}

	var outputs core.Outputs
	blocks := extract.Blocks(primary.Content)

	switch req.Task {
	case core.TaskCodeGeneration, core.TaskCodeOptimization:
		block, _ := extract.First(blocks, requestedLanguage(req))
		outputs.Code = block.Code
		outputs.Language = block.Language
		if outputs.Language == "" {
			if detected := extract.DetectLanguage(block.Code); detected != "unknown" {
				outputs.Language = detected
			}
		}
	case core.TaskCodeReview:
		outputs.Review = primary.Content
	case core.TaskArchitectureDesign:
		outputs.Design = primary.Content
	case core.TaskDeployment:
		outputs.Plan = primary.Content
	}

	if req.Task != core.TaskCodeReview {
		if review, ok := transcript.LastByRole(core.RoleReviewer); ok {
			outputs.Review = review.Content
		}
	}
	return outputs
}

func requestedLanguage(req core.WorkflowRequest) string {
	switch p := req.Payload.(type) {
	case core.GenerationPayload:
		return strings.ToLower(p.Language)
	case core.OptimizationPayload:
		return strings.ToLower(p.Language)
	}
	return ""
}

// reviewerApproved reports whether any reviewer message indicates approval.
func reviewerApproved(transcript core.Transcript) bool {
	for _, m := range transcript.ByRole(core.RoleReviewer) {
		if strings.Contains(strings.ToLower(m.Content), "approved") {
			return true
		}
	}
	return false
}

func contributions(transcript core.Transcript) map[string]int {
	counts := make(map[string]int)
	for _, m := range transcript {
		counts[m.Speaker]++
	}
	return counts
}

func failedResult(req core.WorkflowRequest, err error) core.WorkflowResult {
	return core.WorkflowResult{
		WorkflowID: req.ID,
		Task:       req.Task,
		Status:     core.StatusFailed,
		Errors:     []core.WorkflowError{{Message: err.Error()}},
	}
}

// Cancel requests cooperative cancellation of a running workflow. Requests
// against a terminal workflow are a no-op returning the existing state; a
// running workflow stops at its next round boundary. In-flight agent or
// cloud calls are not preempted.
func (o *Orchestrator) Cancel(id string) (core.Status, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	inst, ok := o.instances[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownWorkflow, id)
	}
	if inst.status.Terminal() {
		return inst.status, nil
	}
	if inst.cancel != nil {
		inst.cancel()
	}
	return inst.status, nil
}

// Status returns the lifecycle state of a known workflow.
func (o *Orchestrator) Status(id string) (core.Status, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	inst, ok := o.instances[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownWorkflow, id)
	}
	return inst.status, nil
}

// Result returns the stored terminal result of a known workflow, when one
// exists.
func (o *Orchestrator) Result(id string) (core.WorkflowResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	inst, ok := o.instances[id]
	if !ok || inst.result == nil {
		return core.WorkflowResult{}, false
	}
	return *inst.result, true
}

// CreateBatch runs independent requests concurrently, one result per
// request in input order. Failures are isolated: one workflow's error never
// cancels its siblings.
func (o *Orchestrator) CreateBatch(ctx context.Context, reqs []core.WorkflowRequest) []core.WorkflowResult {
	results := make([]core.WorkflowResult, len(reqs))

	var g errgroup.Group
	if o.batchCap > 0 {
		g.SetLimit(o.batchCap)
	}
	for i, req := range reqs {
		g.Go(func() error {
			res, err := o.CreateWorkflow(ctx, req)
			if err != nil {
				res = failedResult(req, err)
			}
			results[i] = res
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()
	return results
}
