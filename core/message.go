package core

import "time"

// ConversationMessage is one agent turn inside a conversation round. Messages
// are immutable after creation and owned by the round that produced them.
type ConversationMessage struct {
	Speaker   string    `json:"speaker"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Round     int       `json:"round"`
	Degraded  bool      `json:"degraded,omitempty"` // true when supplied by a fallback, not the agent itself
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the ordered sequence of messages a round produced. Insertion
// order is significant.
type Transcript []ConversationMessage

// ByRole returns all messages spoken by agents with the given role, in order.
func (t Transcript) ByRole(role Role) []ConversationMessage {
	var out []ConversationMessage
	for _, m := range t {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

// LastByRole returns the most recent message for the given role.
func (t Transcript) LastByRole(role Role) (ConversationMessage, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Role == role {
			return t[i], true
		}
	}
	return ConversationMessage{}, false
}

// Speakers returns the distinct speaker names in first-spoken order.
func (t Transcript) Speakers() []string {
	seen := make(map[string]struct{}, len(t))
	var out []string
	for _, m := range t {
		if _, ok := seen[m.Speaker]; ok {
			continue
		}
		seen[m.Speaker] = struct{}{}
		out = append(out, m.Speaker)
	}
	return out
}

// Clone returns a shallow copy safe for handing to extractors while the
// round keeps appending.
func (t Transcript) Clone() Transcript {
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}
