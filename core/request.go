package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TaskPayload is the typed, per-task request body. Each supported task type
// has exactly one payload struct; generic maps stop at the orchestrator
// boundary.
type TaskPayload interface {
	// TaskType returns the task this payload belongs to.
	TaskType() TaskType
	// Validate checks required fields before any conversation starts.
	Validate() error
	// Seed renders the free-text task description used to open the
	// conversation.
	Seed() string
}

// WorkflowRequest is one end-to-end unit of work. Requests are value objects:
// created per call and discarded after the result is returned.
type WorkflowRequest struct {
	ID         string      `json:"workflowId"`
	Task       TaskType    `json:"taskType"`
	Complexity Complexity  `json:"complexity"`
	Payload    TaskPayload `json:"payload"`
}

// Validate checks the request against the fixed task set and delegates to
// the payload. The complexity defaults to medium when unset.
func (r *WorkflowRequest) Validate() error {
	if !r.Task.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTaskType, string(r.Task))
	}
	if r.Complexity == "" {
		r.Complexity = ComplexityMedium
	}
	if !r.Complexity.Valid() {
		return fmt.Errorf("invalid complexity %q", string(r.Complexity))
	}
	if r.Payload == nil {
		return errors.New("missing payload")
	}
	if r.Payload.TaskType() != r.Task {
		return fmt.Errorf("payload type %s does not match task %s", r.Payload.TaskType(), r.Task)
	}
	return r.Payload.Validate()
}

// GenerationPayload requests new code from a natural language prompt.
type GenerationPayload struct {
	Prompt       string   `json:"prompt"`
	Language     string   `json:"language,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}

// TaskType implements TaskPayload.
func (p GenerationPayload) TaskType() TaskType { return TaskCodeGeneration }

// Validate implements TaskPayload.
func (p GenerationPayload) Validate() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return errors.New("code_generation requires a prompt")
	}
	return nil
}

// Seed implements TaskPayload.
func (p GenerationPayload) Seed() string {
	var b strings.Builder
	b.WriteString(p.Prompt)
	if p.Language != "" {
		fmt.Fprintf(&b, "\nTarget language: %s", p.Language)
	}
	if len(p.Requirements) > 0 {
		fmt.Fprintf(&b, "\nRequirements: %s", strings.Join(p.Requirements, "; "))
	}
	return b.String()
}

// OptimizationPayload requests a rewrite of existing code toward a target.
type OptimizationPayload struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
	Target   string `json:"target,omitempty"` // performance, memory or readability
}

// TaskType implements TaskPayload.
func (p OptimizationPayload) TaskType() TaskType { return TaskCodeOptimization }

// Validate implements TaskPayload.
func (p OptimizationPayload) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return errors.New("code_optimization requires code")
	}
	switch p.Target {
	case "", "performance", "memory", "readability":
		return nil
	}
	return fmt.Errorf("invalid optimization target %q", p.Target)
}

// Seed implements TaskPayload.
func (p OptimizationPayload) Seed() string {
	target := p.Target
	if target == "" {
		target = "performance"
	}
	return fmt.Sprintf("Optimize the following %s code for %s:\n```%s\n%s\n```",
		orUnspecified(p.Language), target, p.Language, p.Code)
}

// ReviewPayload requests review notes for existing code.
type ReviewPayload struct {
	Code     string   `json:"code"`
	Language string   `json:"language,omitempty"`
	Criteria []string `json:"criteria,omitempty"`
}

// TaskType implements TaskPayload.
func (p ReviewPayload) TaskType() TaskType { return TaskCodeReview }

// Validate implements TaskPayload.
func (p ReviewPayload) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return errors.New("code_review requires code")
	}
	return nil
}

// Seed implements TaskPayload.
func (p ReviewPayload) Seed() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review the following %s code:\n```%s\n%s\n```", orUnspecified(p.Language), p.Language, p.Code)
	if len(p.Criteria) > 0 {
		fmt.Fprintf(&b, "\nFocus on: %s", strings.Join(p.Criteria, "; "))
	}
	return b.String()
}

// ArchitecturePayload requests a component-level design.
type ArchitecturePayload struct {
	Requirements []string `json:"requirements"`
	Constraints  []string `json:"constraints,omitempty"`
}

// TaskType implements TaskPayload.
func (p ArchitecturePayload) TaskType() TaskType { return TaskArchitectureDesign }

// Validate implements TaskPayload.
func (p ArchitecturePayload) Validate() error {
	if len(p.Requirements) == 0 {
		return errors.New("architecture_design requires at least one requirement")
	}
	return nil
}

// Seed implements TaskPayload.
func (p ArchitecturePayload) Seed() string {
	var b strings.Builder
	b.WriteString("Design a system satisfying:\n")
	for _, r := range p.Requirements {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	if len(p.Constraints) > 0 {
		b.WriteString("Constraints:\n")
		for _, c := range p.Constraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// DeploymentPayload requests a deployment plan for a set of services.
type DeploymentPayload struct {
	Environment string   `json:"environment"`
	Services    []string `json:"services"`
	Strategy    string   `json:"strategy,omitempty"`
}

// TaskType implements TaskPayload.
func (p DeploymentPayload) TaskType() TaskType { return TaskDeployment }

// Validate implements TaskPayload.
func (p DeploymentPayload) Validate() error {
	if strings.TrimSpace(p.Environment) == "" {
		return errors.New("deployment requires an environment")
	}
	if len(p.Services) == 0 {
		return errors.New("deployment requires at least one service")
	}
	return nil
}

// Seed implements TaskPayload.
func (p DeploymentPayload) Seed() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan a deployment of %s to %s.", strings.Join(p.Services, ", "), p.Environment)
	if p.Strategy != "" {
		fmt.Fprintf(&b, " Strategy: %s.", p.Strategy)
	}
	return b.String()
}

// DecodePayload unmarshals an externally supplied JSON payload into the
// concrete struct for the given task type.
func DecodePayload(task TaskType, data []byte) (TaskPayload, error) {
	var (
		payload TaskPayload
		err     error
	)
	switch task {
	case TaskCodeGeneration:
		var p GenerationPayload
		err = json.Unmarshal(data, &p)
		payload = p
	case TaskCodeOptimization:
		var p OptimizationPayload
		err = json.Unmarshal(data, &p)
		payload = p
	case TaskCodeReview:
		var p ReviewPayload
		err = json.Unmarshal(data, &p)
		payload = p
	case TaskArchitectureDesign:
		var p ArchitecturePayload
		err = json.Unmarshal(data, &p)
		payload = p
	case TaskDeployment:
		var p DeploymentPayload
		err = json.Unmarshal(data, &p)
		payload = p
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskType, string(task))
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func orUnspecified(s string) string {
	if s == "" {
		return "unspecified"
	}
	return s
}
