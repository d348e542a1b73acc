// Package modeltest provides a scripted model backend for tests. It
// stands in for a real model the way mock LLM clients do elsewhere in the
// codebase: responses are queued up front and replayed deterministically.
package modeltest

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/lmfoundry/locallm/chatmodel"
	"github.com/lmfoundry/locallm/model"
)

const eosID = 0

// Backend replays scripted responses. Tokenization is one token per rune,
// interned on first use, so Decode(Encode(s)) == s for any script.
type Backend struct {
	vocab []string
	index map[string]int

	tokenQueue  []int
	logitQueue  [][]float64
	LogitCalls  int
	LastSeq     []int
	Err         error
	ChatRender func(turns []chatmodel.Turn) (string, error)
	ModelInfo  model.Info
	// EmitPeak is the logit assigned to the scripted token; everything
	// else gets its negative, so any sampling config selects the script.
	EmitPeak   float64
	promptSeen []string
}

func New() *Backend {
	return &Backend{
		vocab:    []string{"<eos>"},
		index:    map[string]int{"<eos>": eosID},
		EmitPeak: 100,
		ModelInfo: model.Info{
			Path:       "models/test",
			Device:     "cpu",
			DType:      "float32",
			Parameters: 1_000_000,
		},
	}
}

func (b *Backend) intern(tok string) int {
	if id, ok := b.index[tok]; ok {
		return id
	}
	id := len(b.vocab)
	b.vocab = append(b.vocab, tok)
	b.index[tok] = id
	return id
}

// QueueResponse schedules one full model reply: its runes are emitted one
// token at a time, followed by the end-of-sequence token.
func (b *Backend) QueueResponse(text string) *Backend {
	for _, r := range text {
		b.tokenQueue = append(b.tokenQueue, b.intern(string(r)))
	}
	b.tokenQueue = append(b.tokenQueue, eosID)
	return b
}

// QueueTokens schedules raw token ids without a trailing EOS.
func (b *Backend) QueueTokens(ids ...int) *Backend {
	b.tokenQueue = append(b.tokenQueue, ids...)
	return b
}

// QueueLogits schedules explicit distributions, consumed before any
// scripted responses.
func (b *Backend) QueueLogits(rows ...[]float64) *Backend {
	b.logitQueue = append(b.logitQueue, rows...)
	return b
}

// Intern exposes the id assigned to a token string, adding it if needed.
func (b *Backend) Intern(tok string) int { return b.intern(tok) }

func (b *Backend) Encode(text string) []int {
	ids := make([]int, 0, len(text))
	for _, r := range text {
		ids = append(ids, b.intern(string(r)))
	}
	b.promptSeen = append(b.promptSeen, text)
	return ids
}

func (b *Backend) Decode(ids []int) string {
	var out []byte
	for _, id := range ids {
		if id == eosID || id < 0 || id >= len(b.vocab) {
			continue
		}
		out = append(out, b.vocab[id]...)
	}
	return string(out)
}

func (b *Backend) NextTokenLogits(_ context.Context, ids []int) ([]float64, error) {
	b.LogitCalls++
	b.LastSeq = append([]int(nil), ids...)
	if b.Err != nil {
		return nil, b.Err
	}
	if len(b.logitQueue) > 0 {
		row := b.logitQueue[0]
		b.logitQueue = b.logitQueue[1:]
		return row, nil
	}
	next := eosID
	if len(b.tokenQueue) > 0 {
		next = b.tokenQueue[0]
		b.tokenQueue = b.tokenQueue[1:]
	}
	row := make([]float64, len(b.vocab))
	for i := range row {
		row[i] = -b.EmitPeak
	}
	row[next] = b.EmitPeak
	return row, nil
}

func (b *Backend) EOSToken() int { return eosID }

func (b *Backend) HasChatTemplate() bool { return b.ChatRender != nil }

func (b *Backend) ApplyChatTemplate(turns []chatmodel.Turn) (string, error) {
	if b.ChatRender == nil {
		return "", errors.New("no chat template")
	}
	return b.ChatRender(turns)
}

func (b *Backend) Info() model.Info { return b.ModelInfo }

// Prompts returns every prompt passed to Encode, in order.
func (b *Backend) Prompts() []string { return b.promptSeen }

var _ model.Backend = (*Backend)(nil)
