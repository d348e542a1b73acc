// Package textgen drives the token-by-token generation loop over a model
// backend: it obtains next-token distributions, samples, decodes, and
// detects stop conditions.
package textgen

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/lmfoundry/locallm/chatmodel"
	"github.com/lmfoundry/locallm/metricskey"
	"github.com/lmfoundry/locallm/model"
	"github.com/lmfoundry/locallm/prompts"
	"github.com/lmfoundry/locallm/sampling"
)

var logger = xlog.NewPackageLogger("github.com/lmfoundry/locallm", "textgen")

// StopReason explains why a generation terminated.
type StopReason string

const (
	// StopMaxTokens means the token budget ran out.
	StopMaxTokens StopReason = "max_tokens"
	// StopSequence means a configured stop sequence appeared.
	StopSequence StopReason = "stop_sequence"
	// StopEndOfSequence means the model emitted its end-of-sequence token.
	StopEndOfSequence StopReason = "end_of_sequence"
)

// Result is the outcome of one generation call. Text holds only the newly
// generated output, never the input prompt and never the stop sequence
// that triggered termination.
type Result struct {
	Text       string
	StopReason StopReason
	TokenCount int
}

// Engine runs generations against a single model backend. The backend is
// not reentrant-safe: one engine serves one generation at a time and
// callers must serialize concurrent requests.
type Engine struct {
	backend model.Backend
}

func NewEngine(backend model.Backend) (*Engine, error) {
	if backend == nil {
		return nil, errors.New("model backend is required")
	}
	return &Engine{backend: backend}, nil
}

// Backend returns the engine's model handle.
func (e *Engine) Backend() model.Backend {
	return e.backend
}

// Generate produces a completion for a raw prompt. The config is
// validated before the first model invocation; cancellation is honored at
// token boundaries only.
func (e *Engine) Generate(ctx context.Context, prompt string, cfg sampling.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()
	defer metricskey.PerfGeneration.MeasureSince(started, "generate")

	res, err := e.run(ctx, prompt, cfg)
	if err != nil {
		metricskey.StatsGenerationsFailed.IncrCounter(1, "generate")
		return nil, err
	}
	metricskey.StatsGenerationsSucceeded.IncrCounter(1, "generate")
	return res, nil
}

// Chat renders a conversation through the prompt builder and generates
// the assistant's next reply.
func (e *Engine) Chat(ctx context.Context, conv chatmodel.Conversation, cfg sampling.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prompt, err := prompts.Build(e.backend, conv)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	defer metricskey.PerfGeneration.MeasureSince(started, "chat")

	res, err := e.run(ctx, prompt, cfg)
	if err != nil {
		metricskey.StatsGenerationsFailed.IncrCounter(1, "chat")
		return nil, err
	}
	metricskey.StatsGenerationsSucceeded.IncrCounter(1, "chat")
	return res, nil
}

func (e *Engine) run(ctx context.Context, prompt string, cfg sampling.Config) (*Result, error) {
	seq := e.backend.Encode(prompt)
	rng := sampling.NewRNG(cfg.Seed)

	var generated []int
	var text string

	for len(generated) < cfg.MaxNewTokens {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithMessage(err, "generation cancelled")
		}

		logits, err := e.backend.NextTokenLogits(ctx, seq)
		if err != nil {
			return nil, errors.WithMessage(err, "model backend failed")
		}

		tok, err := sampling.Sample(logits, generated, cfg, rng)
		if err != nil {
			return nil, err
		}

		if tok == e.backend.EOSToken() {
			return e.finish(text, StopEndOfSequence, len(generated)), nil
		}

		generated = append(generated, tok)
		seq = append(seq, tok)
		text = e.backend.Decode(generated)

		if trimmed, hit := cutStopSequence(text, cfg.StopSequences); hit {
			return e.finish(trimmed, StopSequence, len(generated)), nil
		}
	}

	return e.finish(text, StopMaxTokens, len(generated)), nil
}

func (e *Engine) finish(text string, reason StopReason, tokens int) *Result {
	metricskey.StatsTokensGenerated.IncrCounter(float64(tokens), string(reason))
	logger.KV(xlog.DEBUG,
		"status", "generation_done",
		"reason", reason,
		"tokens", tokens,
	)
	return &Result{Text: text, StopReason: reason, TokenCount: tokens}
}

// cutStopSequence truncates text at the earliest occurrence of any stop
// sequence. The returned text never contains the sequence that fired.
func cutStopSequence(text string, stops []string) (string, bool) {
	cut := -1
	for _, stop := range stops {
		if stop == "" {
			continue
		}
		if idx := strings.Index(text, stop); idx >= 0 && (cut < 0 || idx < cut) {
			cut = idx
		}
	}
	if cut < 0 {
		return text, false
	}
	return text[:cut], true
}
