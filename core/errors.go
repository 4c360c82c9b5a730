package core

import (
	"errors"
	"fmt"
)

// ErrUnknownTaskType rejects a request before any conversation starts.
var ErrUnknownTaskType = errors.New("unknown task type")

// ErrWorkflowTimeout marks a workflow that exceeded its wall-clock deadline.
// The partial transcript is discarded, never merged into a result.
var ErrWorkflowTimeout = errors.New("workflow deadline exceeded")

// ErrWorkflowCancelled marks a workflow stopped at a round boundary by a
// caller's cancellation request.
var ErrWorkflowCancelled = errors.New("workflow cancelled")

// AgentFailureError wraps a failed agent call. It is recovered locally via
// the fallback layer when coverage exists for the role.
type AgentFailureError struct {
	Role  Role
	Agent string
	Cause error
}

// Error implements error.
func (e *AgentFailureError) Error() string {
	return fmt.Sprintf("agent %s (%s) failed: %v", e.Agent, e.Role, e.Cause)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *AgentFailureError) Unwrap() error { return e.Cause }

// NoFallbackError reports that a failing role has no degraded output
// registered. The participant's turn is skipped; the round continues.
type NoFallbackError struct {
	Role Role
}

// Error implements error.
func (e *NoFallbackError) Error() string {
	return fmt.Sprintf("no fallback available for role %s", e.Role)
}

// CloudDispatchError reports a failed cloud backend call. The dispatcher
// recovers by falling back to the local orchestration path.
type CloudDispatchError struct {
	StatusCode int
	Body       string
}

// Error implements error.
func (e *CloudDispatchError) Error() string {
	return fmt.Sprintf("cloud dispatch failed: status %d: %s", e.StatusCode, e.Body)
}
