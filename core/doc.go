// Package core provides the foundational domain types and interfaces used by
// FusionCoder. It defines the core abstractions for:
//
//   - Agents (role-bound capabilities producing conversational responses)
//   - Workflow requests and results (typed per task, validated on entry)
//   - Conversation messages and transcripts (append-only records)
//   - Cloud backend and event bus collaborators (narrow external interfaces)
//   - Error kinds shared across the orchestration layers
//
// The package intentionally keeps implementation concerns (orchestration,
// caching, transports, concrete agents) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
