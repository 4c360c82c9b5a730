package bus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fusionworks/fusioncoder/core"
	"github.com/fusionworks/fusioncoder/logging"
	"github.com/fusionworks/fusioncoder/workflow"
)

// RequestEnvelope is the wire form of a workflow request. The payload stays
// raw until the task type selects its concrete struct.
type RequestEnvelope struct {
	WorkflowID string          `json:"workflowId"`
	Task       core.TaskType   `json:"taskType"`
	Complexity core.Complexity `json:"complexity,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

// Event is one lifecycle notification published by the listener.
type Event struct {
	Type       string               `json:"type"` // "workflow.started" or "workflow.completed"
	WorkflowID string               `json:"workflowId"`
	Task       core.TaskType        `json:"taskType"`
	Status     core.Status          `json:"status,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
	Result     *core.WorkflowResult `json:"result,omitempty"`
}

// Listener drains the request subject, drives the orchestrator and publishes
// lifecycle events. Duplicate deliveries of a workflow ID are absorbed here
// on top of the orchestrator's own idempotency, so duplicates do not even
// produce duplicate started events.
type Listener struct {
	orch   *workflow.Orchestrator
	bus    core.EventBus
	logger logging.Logger

	mu          sync.Mutex
	seen        map[string]bool
	unsubscribe func() error
	wg          sync.WaitGroup
}

// ListenerOptions configures a Listener.
type ListenerOptions struct {
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// NewListener wires an orchestrator to a bus.
func NewListener(orch *workflow.Orchestrator, eventBus core.EventBus, optFns ...func(o *ListenerOptions)) *Listener {
	var opts ListenerOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Listener{
		orch:   orch,
		bus:    eventBus,
		logger: logging.OrNoOp(opts.Logger),
		seen:   make(map[string]bool),
	}
}

// Start subscribes to the request subject. Each request runs in its own
// goroutine under ctx; Stop waits for in-flight workflows.
func (l *Listener) Start(ctx context.Context) error {
	unsubscribe, err := l.bus.Subscribe(TopicRequests, func(data []byte) {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.handle(ctx, data)
		}()
	})
	if err != nil {
		return err
	}
	l.unsubscribe = unsubscribe
	l.logger.Info("listening for workflow requests", "topic", TopicRequests)
	return nil
}

// Stop cancels the subscription and waits for in-flight workflows to finish.
func (l *Listener) Stop() error {
	var err error
	if l.unsubscribe != nil {
		err = l.unsubscribe()
		l.unsubscribe = nil
	}
	l.wg.Wait()
	return err
}

func (l *Listener) handle(ctx context.Context, data []byte) {
	var env RequestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		l.logger.Warn("discarding malformed workflow request", "error", err.Error())
		return
	}

	if env.WorkflowID != "" && !l.admit(env.WorkflowID) {
		l.logger.Debug("duplicate workflow request absorbed", "workflow_id", env.WorkflowID)
		return
	}

	payload, err := core.DecodePayload(env.Task, env.Payload)
	if err != nil {
		l.logger.Warn("discarding workflow request with bad payload", "workflow_id", env.WorkflowID, "error", err.Error())
		return
	}
	req := core.WorkflowRequest{
		ID:         env.WorkflowID,
		Task:       env.Task,
		Complexity: env.Complexity,
		Payload:    payload,
	}

	l.publish(TopicStarted, Event{
		Type:       "workflow.started",
		WorkflowID: req.ID,
		Task:       req.Task,
		Status:     core.StatusRunning,
		Timestamp:  time.Now(),
	})

	result, err := l.orch.CreateWorkflow(ctx, req)
	if err != nil {
		result = core.WorkflowResult{
			WorkflowID: req.ID,
			Task:       req.Task,
			Status:     core.StatusFailed,
			Errors:     []core.WorkflowError{{Message: err.Error()}},
		}
	}

	done := Event{
		Type:       "workflow.completed",
		WorkflowID: result.WorkflowID,
		Task:       result.Task,
		Status:     result.Status,
		Timestamp:  time.Now(),
		Result:     &result,
	}
	l.publish(TopicCompleted, done)
	if result.WorkflowID != "" {
		l.publish(ResultTopic(result.WorkflowID), done)
	}
}

// admit reports whether a workflow ID is new to this listener.
func (l *Listener) admit(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[id] {
		return false
	}
	l.seen[id] = true
	return true
}

func (l *Listener) publish(topic string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		l.logger.Error("marshal bus event", "topic", topic, "error", err.Error())
		return
	}
	if err := l.bus.Publish(topic, data); err != nil {
		l.logger.Warn("publish bus event failed", "topic", topic, "error", err.Error())
	}
}
