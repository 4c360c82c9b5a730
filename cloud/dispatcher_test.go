package cloud

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionworks/fusioncoder/cache"
	"github.com/fusionworks/fusioncoder/core"
)

type countingBackend struct {
	inner core.CloudBackend
	calls atomic.Int64
	err   error
}

func (b *countingBackend) Invoke(ctx context.Context, endpoint string, payload map[string]any) (map[string]any, error) {
	b.calls.Add(1)
	if b.err != nil {
		return nil, b.err
	}
	return b.inner.Invoke(ctx, endpoint, payload)
}

func highGeneration(id string) core.WorkflowRequest {
	return core.WorkflowRequest{
		ID:         id,
		Task:       core.TaskCodeGeneration,
		Complexity: core.ComplexityHigh,
		Payload:    core.GenerationPayload{Prompt: "Write a fibonacci function.", Language: "python"},
	}
}

func TestEligibility(t *testing.T) {
	d, err := NewDispatcher(NewScriptedBackend())
	require.NoError(t, err)

	assert.True(t, d.Eligible(highGeneration("a")))

	opt := core.WorkflowRequest{
		Task:       core.TaskCodeOptimization,
		Complexity: core.ComplexityHigh,
		Payload:    core.OptimizationPayload{Code: "def f(): pass"},
	}
	assert.True(t, d.Eligible(opt))

	medium := highGeneration("b")
	medium.Complexity = core.ComplexityMedium
	assert.False(t, d.Eligible(medium), "only high complexity is offloaded")

	review := core.WorkflowRequest{
		Task:       core.TaskCodeReview,
		Complexity: core.ComplexityHigh,
		Payload:    core.ReviewPayload{Code: "x"},
	}
	assert.False(t, d.Eligible(review), "review has no cloud endpoint")
}

func TestDispatchGeneration(t *testing.T) {
	d, err := NewDispatcher(NewScriptedBackend())
	require.NoError(t, err)

	outputs, err := d.Dispatch(context.Background(), highGeneration("wf-1"))
	require.NoError(t, err)
	assert.Contains(t, outputs.Code, "def solve")
	assert.Equal(t, "python", outputs.Language)
}

func TestDispatchOptimization(t *testing.T) {
	d, err := NewDispatcher(NewScriptedBackend())
	require.NoError(t, err)

	outputs, err := d.Dispatch(context.Background(), core.WorkflowRequest{
		Task:       core.TaskCodeOptimization,
		Complexity: core.ComplexityHigh,
		Payload:    core.OptimizationPayload{Code: "func f() {}", Language: "go", Target: "memory"},
	})
	require.NoError(t, err)
	assert.Contains(t, outputs.Code, "// optimized for memory")
	assert.Contains(t, outputs.Code, "func f() {}")
	assert.Equal(t, "go", outputs.Language)
}

func TestDispatchCachesResponses(t *testing.T) {
	backend := &countingBackend{inner: NewScriptedBackend()}
	c := cache.New()
	d, err := NewDispatcher(backend, func(o *Options) { o.Cache = c })
	require.NoError(t, err)

	first, err := d.Dispatch(context.Background(), highGeneration("wf-1"))
	require.NoError(t, err)

	second, err := d.Dispatch(context.Background(), highGeneration("wf-2"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, backend.calls.Load(), "second call served from cache")
	assert.EqualValues(t, 1, c.Stats().Hits)
}

func TestDispatchBackendFailure(t *testing.T) {
	backend := &countingBackend{inner: NewScriptedBackend(), err: errors.New("service down")}
	c := cache.New()
	d, err := NewDispatcher(backend, func(o *Options) { o.Cache = c })
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), highGeneration("wf-1"))
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len(), "failures are never cached")
}

func TestNewDispatcherRequiresBackend(t *testing.T) {
	_, err := NewDispatcher(nil)
	assert.Error(t, err)
}

func TestScriptedBackendUnknownEndpoint(t *testing.T) {
	_, err := NewScriptedBackend().Invoke(context.Background(), "/v1/nope", map[string]any{})
	assert.Error(t, err)
}

func TestScriptedBackendDeterministic(t *testing.T) {
	b := NewScriptedBackend()
	payload := map[string]any{"prompt": "Write a parser.", "language": "go"}

	first, err := b.Invoke(context.Background(), EndpointGenerate, payload)
	require.NoError(t, err)
	second, err := b.Invoke(context.Background(), EndpointGenerate, payload)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first["code"], "package solution")
}

func TestHTTPBackendInvoke(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"def f(): pass","language":"python"}`))
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL, func(o *HTTPOptions) { o.APIKey = "secret" })
	resp, err := b.Invoke(context.Background(), EndpointGenerate, map[string]any{"prompt": "x"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, EndpointGenerate, gotPath)
	assert.Equal(t, "def f(): pass", resp["code"])
}

func TestHTTPBackendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL)
	_, err := b.Invoke(context.Background(), EndpointGenerate, map[string]any{"prompt": "x"})

	var cde *core.CloudDispatchError
	require.ErrorAs(t, err, &cde)
	assert.Equal(t, http.StatusTooManyRequests, cde.StatusCode)
	assert.Contains(t, cde.Body, "quota exceeded")
}
