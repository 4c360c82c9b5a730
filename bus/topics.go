package bus

// Topic layout. Requests arrive on one subject; lifecycle events fan out per
// phase, with results additionally published on a per-workflow subject so a
// submitter can await its own outcome.
const (
	TopicRequests  = "workflows.requests"
	TopicStarted   = "workflows.events.started"
	TopicCompleted = "workflows.events.completed"
)

// ResultTopic is the per-workflow result subject.
func ResultTopic(workflowID string) string {
	return "workflows.results." + workflowID
}
