package core

// TaskType identifies one of the supported workflow recipes.
type TaskType string

const (
	// TaskCodeGeneration produces source code from a natural language prompt.
	TaskCodeGeneration TaskType = "code_generation"
	// TaskCodeOptimization rewrites existing code toward a target (performance, memory, readability).
	TaskCodeOptimization TaskType = "code_optimization"
	// TaskCodeReview produces review notes for existing code.
	TaskCodeReview TaskType = "code_review"
	// TaskArchitectureDesign produces a component-level design from requirements.
	TaskArchitectureDesign TaskType = "architecture_design"
	// TaskDeployment produces a deployment plan for a set of services.
	TaskDeployment TaskType = "deployment"
)

// SupportedTaskTypes returns the fixed set of task types in declaration order.
func SupportedTaskTypes() []TaskType {
	return []TaskType{
		TaskCodeGeneration,
		TaskCodeOptimization,
		TaskCodeReview,
		TaskArchitectureDesign,
		TaskDeployment,
	}
}

// Valid reports whether t is one of the supported task types.
func (t TaskType) Valid() bool {
	switch t {
	case TaskCodeGeneration, TaskCodeOptimization, TaskCodeReview, TaskArchitectureDesign, TaskDeployment:
		return true
	}
	return false
}

// Complexity tiers drive participant assembly: higher tiers add agents on top
// of the lower tier's set, never removing any.
type Complexity string

const (
	// ComplexityLow runs the minimal participant set.
	ComplexityLow Complexity = "low"
	// ComplexityMedium adds design and data collection participants.
	ComplexityMedium Complexity = "medium"
	// ComplexityHigh additionally adds a reviewer.
	ComplexityHigh Complexity = "high"
)

// Valid reports whether c is a known complexity tier.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

// Status describes the lifecycle state of a workflow. Results carry one of
// the terminal states; the queued/running values appear on the external
// presentation schema only.
type Status string

const (
	// StatusQueued marks a workflow accepted but not yet started.
	StatusQueued Status = "queued"
	// StatusRunning marks a workflow with an active conversation round.
	StatusRunning Status = "running"
	// StatusCompleted marks a workflow that produced its full artifact.
	StatusCompleted Status = "completed"
	// StatusPartial marks a workflow that produced a degraded or incomplete artifact.
	StatusPartial Status = "partial"
	// StatusFailed marks a workflow that produced no usable artifact.
	StatusFailed Status = "failed"
	// StatusCancelled marks a workflow stopped by caller request.
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether s is a final state that no transition may leave.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusPartial, StatusFailed, StatusCancelled:
		return true
	}
	return false
}
