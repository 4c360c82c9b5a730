package core

import "time"

// WorkflowError records one recoverable or fatal problem attributed to a
// participant (or to the workflow itself when Agent is empty).
type WorkflowError struct {
	Agent   string `json:"agent,omitempty"`
	Message string `json:"message"`
}

// Outputs carries the structured artifacts derived from a transcript. Fields
// are populated per workflow type: Code for generation/optimization, Review
// for review workflows, Design for architecture, Plan for deployment.
type Outputs struct {
	Code     string `json:"code,omitempty"`
	Language string `json:"language,omitempty"`
	Review   string `json:"review,omitempty"`
	Design   string `json:"design,omitempty"`
	Plan     string `json:"plan,omitempty"`
}

// Metadata carries execution observations that are informative rather than
// contractual: contribution counts, timing and degradation flags.
type Metadata struct {
	Contributions map[string]int `json:"contributions,omitempty"` // agent name -> message count
	Rounds        int            `json:"rounds"`                  // speaker turns taken
	RoundLimitHit bool           `json:"roundLimitHit,omitempty"` // cap reached before the termination phrase
	CloudServed   bool           `json:"cloudServed,omitempty"`   // result came from the cloud dispatch path
	StartedAt     time.Time      `json:"startedAt"`
	ExecutionTime time.Duration  `json:"executionTime"`
}

// WorkflowResult is the terminal outcome of one workflow request.
//
// Invariants: Confidence is always within [0,1]; Status == failed implies
// Errors is non-empty.
type WorkflowResult struct {
	WorkflowID string          `json:"workflowId"`
	Task       TaskType        `json:"taskType"`
	Status     Status          `json:"status"`
	Outputs    Outputs         `json:"outputs"`
	Confidence float64         `json:"confidence"`
	Errors     []WorkflowError `json:"errors,omitempty"`
	Metadata   Metadata        `json:"metadata"`
}
