// Package tools defines the capability contract the agent dispatches to,
// and the registry that holds the closed set of tools for a run.
package tools

import (
	"context"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/lmfoundry/locallm/llmutils"
)

var (
	// ErrFailedUnmarshalInput means the tool input was not valid JSON for
	// the tool's schema. Surfaced to the model so it can retry.
	ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")
	// ErrInvalidArguments means the input parsed but failed validation.
	ErrInvalidArguments = errors.New("invalid arguments")
)

var validate = validator.New()

// ITool is a capability the agent can invoke.
type ITool interface {
	// Name returns the name of the tool, unique within a registry.
	Name() string
	// Description returns the description of the tool, to be used in the
	// prompt. Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the tool, to be
	// used in the prompt.
	Parameters() any

	// Call executes the tool with a JSON input and returns the result as
	// text. Implementations return ErrFailedUnmarshalInput when the input
	// does not match the schema.
	Call(context.Context, string) (string, error)
}

// Tool is a typed tool with a structured request and response.
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// McpServerRegistrator is the part of an MCP server tools register
// themselves on.
type McpServerRegistrator interface {
	RegisterTool(name string, description string, handler any) error
}

// IMCPTool is a tool that can register itself with an MCP server using
// its own typed argument struct, so the advertised schema matches the
// tool's real parameters.
type IMCPTool interface {
	ITool
	RegisterMCP(registrator McpServerRegistrator) error
}

// Callback observes tool execution.
type Callback interface {
	OnToolStart(context.Context, ITool, string)
	OnToolEnd(context.Context, ITool, string, string)
	OnToolError(context.Context, ITool, string, error)
}

// UnmarshalInput parses model-emitted JSON into a typed request,
// tolerating the usual LLM sloppiness (surrounding prose, trailing
// artifacts), then validates it.
func UnmarshalInput[I any](input string, req *I) error {
	if err := ljson.Unmarshal(llmutils.CleanJSON([]byte(input)), req); err != nil {
		return errors.WithMessage(ErrFailedUnmarshalInput, err.Error())
	}
	return ValidateInput(req)
}

// ValidateInput checks an already-decoded request against its validate
// tags, used by MCP handlers that receive typed arguments directly.
func ValidateInput(req any) error {
	if err := validate.Struct(req); err != nil {
		return errors.WithMessage(ErrInvalidArguments, err.Error())
	}
	return nil
}
