// Package cloud implements the cloud-first dispatch path: high complexity
// generation and optimization requests are offloaded to a remote code
// service, with a response cache in front of the network call. Everything
// else, and every cloud failure, stays on the local orchestration path.
package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/fusionworks/fusioncoder/cache"
	"github.com/fusionworks/fusioncoder/core"
	"github.com/fusionworks/fusioncoder/logging"
)

// Logical endpoints of the remote code service.
const (
	EndpointGenerate = "/v1/code/generate"
	EndpointOptimize = "/v1/code/optimize"
)

// Dispatcher routes eligible workflow requests to a CloudBackend. It
// implements the orchestrator's CloudDispatcher contract.
type Dispatcher struct {
	backend core.CloudBackend
	cache   *cache.Cache
	logger  logging.Logger
}

// Options configures a Dispatcher.
type Options struct {
	// Cache enables response caching when non-nil.
	Cache *cache.Cache
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// NewDispatcher wraps a backend.
func NewDispatcher(backend core.CloudBackend, optFns ...func(o *Options)) (*Dispatcher, error) {
	if backend == nil {
		return nil, errors.New("cloud dispatcher requires a backend")
	}
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Dispatcher{
		backend: backend,
		cache:   opts.Cache,
		logger:  logging.OrNoOp(opts.Logger),
	}, nil
}

// Eligible reports whether a request may take the cloud path: only high
// complexity generation and optimization tasks qualify.
func (d *Dispatcher) Eligible(req core.WorkflowRequest) bool {
	if req.Complexity != core.ComplexityHigh {
		return false
	}
	_, ok := endpointFor(req.Task)
	return ok
}

// Dispatch serves one eligible request, cache first. A cache hit never
// touches the network; a successful call populates the cache before
// returning.
func (d *Dispatcher) Dispatch(ctx context.Context, req core.WorkflowRequest) (core.Outputs, error) {
	endpoint, ok := endpointFor(req.Task)
	if !ok {
		return core.Outputs{}, fmt.Errorf("task %s has no cloud endpoint", req.Task)
	}

	payload, err := payloadFor(req)
	if err != nil {
		return core.Outputs{}, err
	}

	var key string
	if d.cache != nil {
		key, err = cache.Key(endpoint, payload)
		if err != nil {
			return core.Outputs{}, err
		}
		if resp, hit := d.cache.Get(key); hit {
			d.logger.Debug("cloud response served from cache", "workflow_id", req.ID, "endpoint", endpoint)
			return outputsFrom(resp)
		}
	}

	resp, err := d.backend.Invoke(ctx, endpoint, payload)
	if err != nil {
		return core.Outputs{}, err
	}

	outputs, err := outputsFrom(resp)
	if err != nil {
		return core.Outputs{}, err
	}
	if d.cache != nil {
		d.cache.Set(key, resp)
	}
	return outputs, nil
}

func endpointFor(task core.TaskType) (string, bool) {
	switch task {
	case core.TaskCodeGeneration:
		return EndpointGenerate, true
	case core.TaskCodeOptimization:
		return EndpointOptimize, true
	}
	return "", false
}

// payloadFor flattens the typed payload into the wire map the remote service
// expects.
func payloadFor(req core.WorkflowRequest) (map[string]any, error) {
	switch p := req.Payload.(type) {
	case core.GenerationPayload:
		m := map[string]any{"prompt": p.Prompt}
		if p.Language != "" {
			m["language"] = p.Language
		}
		if len(p.Requirements) > 0 {
			m["requirements"] = p.Requirements
		}
		return m, nil
	case core.OptimizationPayload:
		m := map[string]any{"code": p.Code}
		if p.Language != "" {
			m["language"] = p.Language
		}
		if p.Target != "" {
			m["target"] = p.Target
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported cloud payload %T", req.Payload)
}

// outputsFrom maps a backend response body onto structured outputs. A
// response without code is treated as a dispatch failure so the caller falls
// back to local orchestration.
func outputsFrom(resp map[string]any) (core.Outputs, error) {
	code, _ := resp["code"].(string)
	if code == "" {
		return core.Outputs{}, errors.New("cloud response carried no code")
	}
	language, _ := resp["language"].(string)
	notes, _ := resp["notes"].(string)
	return core.Outputs{Code: code, Language: language, Review: notes}, nil
}
