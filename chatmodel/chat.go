// Package chatmodel defines the conversation types shared by the
// generation engine, the prompt builder, and the agent orchestrator.
package chatmodel

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is a single role/content entry in a conversation.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Conversation is an ordered list of turns. History only grows: callers
// extend it with Append and must never edit or reorder turns in place.
type Conversation []Turn

// New seeds a conversation with a system instruction and the user's first
// message. Either may be empty and is then omitted.
func New(system, user string) Conversation {
	conv := make(Conversation, 0, 2)
	if system != "" {
		conv = append(conv, Turn{Role: RoleSystem, Content: system})
	}
	if user != "" {
		conv = append(conv, Turn{Role: RoleUser, Content: user})
	}
	return conv
}

// Append returns a new conversation with one more turn. The receiver is
// left untouched so earlier snapshots of the history stay valid.
func (c Conversation) Append(role Role, content string) Conversation {
	next := make(Conversation, len(c), len(c)+1)
	copy(next, c)
	return append(next, Turn{Role: role, Content: content})
}

// ValidRole reports whether r is one of the four known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}
