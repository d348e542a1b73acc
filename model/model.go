// Package model declares the contract between the generation engine and
// the underlying language model. The backend is an exclusively-held,
// non-reentrant resource: callers must serialize generations and pass the
// handle explicitly, never hold it as ambient global state.
package model

import (
	"context"
	"fmt"

	"github.com/lmfoundry/locallm/chatmodel"
)

// Backend is the synchronous interface a concrete model implementation
// provides. Implementations are not safe for concurrent use.
type Backend interface {
	// Encode tokenizes text into model token ids.
	Encode(text string) []int
	// Decode renders token ids back to text, skipping special tokens.
	Decode(ids []int) string
	// NextTokenLogits returns the next-token score distribution for the
	// accumulated sequence.
	NextTokenLogits(ctx context.Context, ids []int) ([]float64, error)
	// EOSToken is the id the model emits to end a sequence.
	EOSToken() int
	// HasChatTemplate reports whether the model ships a structured chat
	// template.
	HasChatTemplate() bool
	// ApplyChatTemplate renders a conversation with the model's template,
	// leaving a trailing generation marker for the assistant reply.
	ApplyChatTemplate(turns []chatmodel.Turn) (string, error)
	// Info describes the loaded model.
	Info() Info
}

// Info is model metadata surfaced on the llm://info resource.
type Info struct {
	Path       string `json:"path" yaml:"path"`
	Device     string `json:"device" yaml:"device"`
	DType      string `json:"dtype" yaml:"dtype"`
	Parameters int64  `json:"parameters" yaml:"parameters"`
}

func (i Info) String() string {
	return fmt.Sprintf("path:       %s\ndevice:     %s\ndtype:      %s\nparameters: %.2fB",
		i.Path, i.Device, i.DType, float64(i.Parameters)/1e9)
}
