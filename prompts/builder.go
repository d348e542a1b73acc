// Package prompts renders conversations into the linear text form a
// model consumes.
package prompts

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lmfoundry/locallm/chatmodel"
	"github.com/lmfoundry/locallm/model"
)

// Build renders a conversation for the given backend. When the model
// ships a chat template it is applied as-is; otherwise the deterministic
// plain rendering is used. Build is pure: the same conversation always
// renders identically.
func Build(backend model.Backend, conv chatmodel.Conversation) (string, error) {
	if backend.HasChatTemplate() {
		prompt, err := backend.ApplyChatTemplate(conv)
		if err != nil {
			return "", errors.WithMessage(err, "failed to apply chat template")
		}
		return prompt, nil
	}
	return Plain(conv), nil
}

// Plain is the fallback rendering: one "<role>: <content>" line per turn,
// closed with a bare "assistant:" marker so the model produces the next
// reply.
func Plain(conv chatmodel.Conversation) string {
	var b strings.Builder
	for _, turn := range conv {
		b.WriteString(string(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString("assistant:")
	return b.String()
}
