package bus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionworks/fusioncoder/agent"
	"github.com/fusionworks/fusioncoder/core"
	"github.com/fusionworks/fusioncoder/workflow"
)

func startBus(t *testing.T) *Client {
	t.Helper()
	srv, err := StartEmbedded(0)
	require.NoError(t, err)
	t.Cleanup(srv.Shutdown)

	client, err := Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func newOrchestrator(t *testing.T) *workflow.Orchestrator {
	t.Helper()
	o, err := workflow.New(func(o *workflow.Options) {
		o.Provider = func(desc core.AgentDescriptor) core.Agent {
			return agent.NewScriptedDefault(desc)
		}
	})
	require.NoError(t, err)
	return o
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	client := startBus(t)

	received := make(chan []byte, 1)
	unsubscribe, err := client.Subscribe("test.subject", func(data []byte) {
		received <- data
	})
	require.NoError(t, err)
	defer func() { _ = unsubscribe() }()

	require.NoError(t, client.Publish("test.subject", []byte("hello")))
	require.NoError(t, client.Flush())

	select {
	case data := <-received:
		assert.Equal(t, "hello", string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestListenerRunsWorkflowAndPublishesEvents(t *testing.T) {
	client := startBus(t)
	orch := newOrchestrator(t)

	listener := NewListener(orch, client)
	require.NoError(t, listener.Start(context.Background()))
	defer func() { _ = listener.Stop() }()

	started := make(chan Event, 1)
	_, err := client.Subscribe(TopicStarted, func(data []byte) {
		var e Event
		if json.Unmarshal(data, &e) == nil {
			started <- e
		}
	})
	require.NoError(t, err)

	results := make(chan Event, 1)
	_, err = client.Subscribe(ResultTopic("wf-bus-1"), func(data []byte) {
		var e Event
		if json.Unmarshal(data, &e) == nil {
			results <- e
		}
	})
	require.NoError(t, err)

	env := RequestEnvelope{
		WorkflowID: "wf-bus-1",
		Task:       core.TaskCodeGeneration,
		Complexity: core.ComplexityLow,
		Payload:    json.RawMessage(`{"prompt":"Write a fibonacci function.","language":"python"}`),
	}
	data, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, client.Publish(TopicRequests, data))
	require.NoError(t, client.Flush())

	select {
	case e := <-started:
		assert.Equal(t, "workflow.started", e.Type)
		assert.Equal(t, "wf-bus-1", e.WorkflowID)
	case <-time.After(5 * time.Second):
		t.Fatal("no started event")
	}

	select {
	case e := <-results:
		assert.Equal(t, "workflow.completed", e.Type)
		require.NotNil(t, e.Result)
		assert.Equal(t, core.StatusCompleted, e.Result.Status)
		assert.NotEmpty(t, e.Result.Outputs.Code)
	case <-time.After(5 * time.Second):
		t.Fatal("no result event")
	}
}

func TestListenerAbsorbsDuplicateRequests(t *testing.T) {
	client := startBus(t)
	orch := newOrchestrator(t)

	listener := NewListener(orch, client)
	require.NoError(t, listener.Start(context.Background()))
	defer func() { _ = listener.Stop() }()

	completed := make(chan Event, 4)
	_, err := client.Subscribe(TopicCompleted, func(data []byte) {
		var e Event
		if json.Unmarshal(data, &e) == nil {
			completed <- e
		}
	})
	require.NoError(t, err)

	env := RequestEnvelope{
		WorkflowID: "wf-dup",
		Task:       core.TaskCodeGeneration,
		Complexity: core.ComplexityLow,
		Payload:    json.RawMessage(`{"prompt":"Write a fibonacci function."}`),
	}
	data, err := json.Marshal(env)
	require.NoError(t, err)

	require.NoError(t, client.Publish(TopicRequests, data))
	require.NoError(t, client.Publish(TopicRequests, data))
	require.NoError(t, client.Flush())

	select {
	case <-completed:
	case <-time.After(5 * time.Second):
		t.Fatal("no completed event")
	}
	select {
	case e := <-completed:
		t.Fatalf("duplicate produced a second completed event: %+v", e)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestListenerDiscardsMalformedRequests(t *testing.T) {
	client := startBus(t)
	orch := newOrchestrator(t)

	listener := NewListener(orch, client)
	require.NoError(t, listener.Start(context.Background()))
	defer func() { _ = listener.Stop() }()

	completed := make(chan Event, 1)
	_, err := client.Subscribe(TopicCompleted, func(data []byte) {
		var e Event
		if json.Unmarshal(data, &e) == nil {
			completed <- e
		}
	})
	require.NoError(t, err)

	require.NoError(t, client.Publish(TopicRequests, []byte("{not json")))
	require.NoError(t, client.Flush())

	select {
	case e := <-completed:
		t.Fatalf("malformed request produced an event: %+v", e)
	case <-time.After(500 * time.Millisecond):
	}
}
