package domain

import "strings"

// Message is a validated conversation entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ParseHistory converts caller-supplied history of arbitrary shape into
// validated messages. History is untrusted external input: a top-level value
// that is not a list yields no history, and entries that are not mappings
// with a known role and non-empty content are dropped rather than aborting
// the turn. At most the last limit entries are considered.
func ParseHistory(raw any, limit int) []Message {
	entries, ok := raw.([]any)
	if !ok {
		return nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]Message, 0, len(entries))
	for _, e := range entries {
		if msg, ok := parseMessage(e); ok {
			out = append(out, msg)
		}
	}
	return out
}

// parseMessage validates a single history entry. Each rule is checked
// explicitly so failures stay enumerable in tests.
func parseMessage(raw any) (Message, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Message{}, false
	}
	role, ok := m["role"].(string)
	if !ok || (role != RoleUser && role != RoleAssistant) {
		return Message{}, false
	}
	content, ok := m["content"].(string)
	if !ok || strings.TrimSpace(content) == "" {
		return Message{}, false
	}
	return Message{Role: role, Content: content}, true
}
