// Package sampling turns next-token score distributions into selected
// tokens. The sampler is a pure function of the distribution, the config
// and an explicit RNG, so seeded runs are reproducible bit for bit.
package sampling

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is returned before any model invocation when the
// sampling parameters are malformed.
var ErrInvalidConfig = errors.New("invalid sampling config")

var validate = validator.New()

// Config holds the sampling parameters for a single generation call.
// It is treated as immutable once validated.
type Config struct {
	// Temperature scales the logits; 0 selects greedily.
	Temperature float64 `json:"temperature" yaml:"temperature" validate:"gte=0"`
	// TopP keeps the smallest nucleus of tokens whose cumulative
	// probability reaches this threshold. Must be in (0, 1].
	TopP float64 `json:"top_p" yaml:"top_p" validate:"gt=0,lte=1"`
	// TopK keeps only the K highest-scoring tokens; 0 disables the filter.
	TopK int `json:"top_k" yaml:"top_k" validate:"gte=0"`
	// RepetitionPenalty down-weights tokens already generated; 1.0 is
	// neutral, 0 suppresses repeats entirely.
	RepetitionPenalty float64 `json:"repetition_penalty" yaml:"repetition_penalty" validate:"gte=0"`
	// StopSequences halt generation as soon as one appears in the output.
	StopSequences []string `json:"stop_sequences,omitempty" yaml:"stop_sequences,omitempty"`
	// Seed makes sampling deterministic when set.
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	// MaxNewTokens bounds the number of generated tokens.
	MaxNewTokens int `json:"max_new_tokens" yaml:"max_new_tokens" validate:"gte=1"`
}

// DefaultConfig returns the generation defaults for direct generate/chat
// calls: 512 tokens, temperature 0.7, nucleus 0.9.
func DefaultConfig() Config {
	return Config{
		Temperature:       0.7,
		TopP:              0.9,
		TopK:              0,
		RepetitionPenalty: 1.0,
		MaxNewTokens:      512,
	}
}

// Validate checks the parameter ranges. It must be called before the
// first model invocation of a generation.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.WithMessage(ErrInvalidConfig, err.Error())
	}
	return nil
}
