// Package agent provides the concrete core.Agent implementations bound to
// registry descriptors: deterministic scripted responders for local and
// degraded operation, and model-driven agents backed by a model.Model
// (Anthropic, OpenAI or mock). The orchestrator never branches on which of
// these it is talking to.
package agent
