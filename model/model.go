// Package model defines the minimal language-model interface backing
// model-driven agents, plus an in-memory mock for tests and examples.
// Concrete adapters live in the anthropic and openai subpackages.
package model

import (
	"context"
	"fmt"
	"strings"
)

// Message is one turn of provider-neutral chat input.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request captures the normalized model input produced by agents.
type Request struct {
	System   string    `json:"system,omitempty"`
	Messages []Message `json:"messages"`
}

// Response is the final completion returned by a model.
type Response struct {
	Content string `json:"content"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// It matches the last user message against registered prompts, falling back
// to a deterministic echo.
type MockModel struct {
	info      Info
	responses map[string]string
	err       error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// FailWith makes every Generate call return err.
func (m *MockModel) FailWith(err error) { m.err = err }

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (Response, error) {
	if m.err != nil {
		return Response{}, m.err
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	var last string
	for _, msg := range req.Messages {
		if msg.Role == "user" {
			last = msg.Content
		}
	}
	if full, ok := m.responses[last]; ok {
		return Response{Content: full}, nil
	}
	return Response{Content: fmt.Sprintf("Mock response to: %s", firstLine(last))}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
