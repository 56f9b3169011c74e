package llmdispatch

import "strings"

// Role identifies the author of a message entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// MessageEntry is one role-tagged entry in a conversation thread.
type MessageEntry struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// MessageThread is the ordered conversational input for a request.
// A RequestSpec never carries an empty thread.
type MessageThread []MessageEntry

// SystemText returns a system-role text entry.
func SystemText(text string) MessageEntry {
	return MessageEntry{Role: RoleSystem, Content: TextContent(text)}
}

// UserText returns a user-role text entry.
func UserText(text string) MessageEntry {
	return MessageEntry{Role: RoleUser, Content: TextContent(text)}
}

// AssistantText returns an assistant-role text entry.
func AssistantText(text string) MessageEntry {
	return MessageEntry{Role: RoleAssistant, Content: TextContent(text)}
}

// Equal reports deep equality of two threads.
func (t MessageThread) Equal(other MessageThread) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i].Role != other[i].Role || !t[i].Content.Equal(other[i].Content) {
			return false
		}
	}
	return true
}

// LastContent returns the content of the final entry, or a zero Content
// for an empty thread.
func (t MessageThread) LastContent() Content {
	if len(t) == 0 {
		return Content{}
	}
	return t[len(t)-1].Content
}

// Preview returns a single-line, whitespace-collapsed excerpt of the
// last user entry, truncated to max runes. Used by progress events.
func (t MessageThread) Preview(max int) string {
	var text string
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Role == RoleUser {
			text = t[i].Content.String()
			break
		}
	}
	if text == "" {
		text = t.LastContent().String()
	}
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if max > 0 && len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return text
}
