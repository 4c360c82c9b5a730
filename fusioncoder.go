// Package fusioncoder provides a high-level façade over the workflow
// orchestrator for embedding code workflows in Go programs. Most applications
// interact with this package by:
//  1. Creating a Coder via New() (scripted agents by default, model-driven
//     agents by supplying a model.Model)
//  2. Calling a task helper such as Generate, Optimize or Review, or Run for
//     full control over the request
//
// The subpackages expose the individual building blocks: workflow for the
// orchestrator, conversation for the round engine, cloud and cache for the
// dispatch path, and bus for the NATS worker loop.
package fusioncoder

import (
	"context"

	"github.com/fusionworks/fusioncoder/agent"
	"github.com/fusionworks/fusioncoder/core"
	"github.com/fusionworks/fusioncoder/logging"
	"github.com/fusionworks/fusioncoder/model"
	"github.com/fusionworks/fusioncoder/workflow"
)

// Options configures a Coder.
type Options struct {
	// Model switches every agent from scripted to model-driven responses.
	Model model.Model
	// Cloud enables the cloud-first dispatch path.
	Cloud workflow.CloudDispatcher
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Coder is the façade over one orchestrator.
type Coder struct {
	orch *workflow.Orchestrator
}

// New constructs a Coder.
func New(optFns ...func(o *Options)) (*Coder, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	provider := func(desc core.AgentDescriptor) core.Agent {
		if opts.Model != nil {
			return agent.NewModelAgent(desc, opts.Model)
		}
		return agent.NewScriptedDefault(desc)
	}

	orch, err := workflow.New(func(o *workflow.Options) {
		o.Provider = provider
		o.Cloud = opts.Cloud
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}
	return &Coder{orch: orch}, nil
}

// Run executes one fully specified workflow request.
func (c *Coder) Run(ctx context.Context, req core.WorkflowRequest) (core.WorkflowResult, error) {
	return c.orch.CreateWorkflow(ctx, req)
}

// RunBatch executes independent requests concurrently, one result per
// request in input order.
func (c *Coder) RunBatch(ctx context.Context, reqs []core.WorkflowRequest) []core.WorkflowResult {
	return c.orch.CreateBatch(ctx, reqs)
}

// Generate produces code from a natural language prompt.
func (c *Coder) Generate(ctx context.Context, prompt, language string, complexity core.Complexity) (core.WorkflowResult, error) {
	return c.Run(ctx, core.WorkflowRequest{
		Task:       core.TaskCodeGeneration,
		Complexity: complexity,
		Payload:    core.GenerationPayload{Prompt: prompt, Language: language},
	})
}

// Optimize rewrites code toward a target: performance, memory or
// readability.
func (c *Coder) Optimize(ctx context.Context, code, language, target string, complexity core.Complexity) (core.WorkflowResult, error) {
	return c.Run(ctx, core.WorkflowRequest{
		Task:       core.TaskCodeOptimization,
		Complexity: complexity,
		Payload:    core.OptimizationPayload{Code: code, Language: language, Target: target},
	})
}

// Review produces review notes for existing code.
func (c *Coder) Review(ctx context.Context, code, language string, complexity core.Complexity) (core.WorkflowResult, error) {
	return c.Run(ctx, core.WorkflowRequest{
		Task:       core.TaskCodeReview,
		Complexity: complexity,
		Payload:    core.ReviewPayload{Code: code, Language: language},
	})
}

// Design produces a component-level architecture for the requirements.
func (c *Coder) Design(ctx context.Context, requirements []string, complexity core.Complexity) (core.WorkflowResult, error) {
	return c.Run(ctx, core.WorkflowRequest{
		Task:       core.TaskArchitectureDesign,
		Complexity: complexity,
		Payload:    core.ArchitecturePayload{Requirements: requirements},
	})
}

// PlanDeployment produces an ordered deployment plan for services in an
// environment.
func (c *Coder) PlanDeployment(ctx context.Context, environment string, services []string, complexity core.Complexity) (core.WorkflowResult, error) {
	return c.Run(ctx, core.WorkflowRequest{
		Task:       core.TaskDeployment,
		Complexity: complexity,
		Payload:    core.DeploymentPayload{Environment: environment, Services: services},
	})
}
