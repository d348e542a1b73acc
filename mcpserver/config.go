package mcpserver

import (
	"time"

	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/go-playground/validator/v10"
)

// Config describes the MCP server: transport selection and the default
// generation and agent parameters applied when a request omits them.
type Config struct {
	// Name is the server name announced to MCP clients.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Transport is stdio or http.
	Transport string `json:"transport,omitempty" yaml:"transport,omitempty" validate:"omitempty,oneof=stdio http"`
	// HTTPAddr is the listen address for the http transport.
	HTTPAddr string `json:"http_addr,omitempty" yaml:"http_addr,omitempty"`

	Generation GenerationConfig `json:"generation,omitempty" yaml:"generation,omitempty"`
	Agent      AgentConfig      `json:"agent,omitempty" yaml:"agent,omitempty"`
}

// GenerationConfig holds default sampling parameters for the generate and
// chat tools.
type GenerationConfig struct {
	MaxNewTokens      int     `json:"max_new_tokens,omitempty" yaml:"max_new_tokens,omitempty" validate:"gte=0"`
	Temperature       float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"gte=0"`
	TopP              float64 `json:"top_p,omitempty" yaml:"top_p,omitempty" validate:"gte=0,lte=1"`
	TopK              int     `json:"top_k,omitempty" yaml:"top_k,omitempty" validate:"gte=0"`
	RepetitionPenalty float64 `json:"repetition_penalty,omitempty" yaml:"repetition_penalty,omitempty" validate:"gte=0"`
}

// AgentConfig bounds run_agent invocations.
type AgentConfig struct {
	MaxSteps int `json:"max_steps,omitempty" yaml:"max_steps,omitempty" validate:"gte=0"`
	// Timeout wraps a whole agent run, in time.ParseDuration form, e.g.
	// "30s". On expiry the run yields a budget-exhausted outcome instead
	// of an error.
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// RunTimeout parses the configured agent timeout; empty means none.
func (c *AgentConfig) RunTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Timeout)
}

var valid = validator.New()

// floatCoalesce returns the first non-zero value. values.NumbersCoalesce
// is integer-only, so the float config fields get their own helper.
func floatCoalesce(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

// withDefaults fills unset fields.
func (c *Config) withDefaults() *Config {
	c.Name = values.StringsCoalesce(c.Name, "local-llm")
	c.Transport = values.StringsCoalesce(c.Transport, "stdio")
	c.HTTPAddr = values.StringsCoalesce(c.HTTPAddr, ":8000")
	c.Generation.MaxNewTokens = values.NumbersCoalesce(c.Generation.MaxNewTokens, 512)
	c.Generation.Temperature = floatCoalesce(c.Generation.Temperature, 0.7)
	c.Generation.TopP = floatCoalesce(c.Generation.TopP, 0.9)
	c.Generation.RepetitionPenalty = floatCoalesce(c.Generation.RepetitionPenalty, 1.0)
	c.Agent.MaxSteps = values.NumbersCoalesce(c.Agent.MaxSteps, 10)
	return c
}

// LoadConfig reads a YAML or JSON config file, expanding environment
// variables. An empty file name returns the defaults.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file != "" {
		err := configloader.UnmarshalAndExpand(file, cfg)
		if err != nil {
			return nil, err
		}
	}
	cfg.withDefaults()
	if err := valid.Struct(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Agent.RunTimeout(); err != nil {
		return nil, err
	}
	return cfg, nil
}
