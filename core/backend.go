package core

import "context"

// CloudBackend is the narrow interface to a remote code service. The
// dispatcher always wraps Invoke's read path with the response cache.
type CloudBackend interface {
	// Invoke posts the payload to the given logical endpoint and returns
	// the decoded response body.
	Invoke(ctx context.Context, endpoint string, payload map[string]any) (map[string]any, error)
}

// EventBus is the narrow pub/sub interface the orchestration layer consumes.
// Delivery is at-least-once: subscribers must tolerate duplicates.
type EventBus interface {
	// Publish sends a message to a topic. Returns once the message is
	// handed to the transport, not once it is delivered.
	Publish(topic string, data []byte) error
	// Subscribe registers a handler for a topic and returns a function
	// that cancels the subscription.
	Subscribe(topic string, handler func(data []byte)) (func() error, error)
}
