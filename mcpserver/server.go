// Package mcpserver exposes the local model over the Model Context
// Protocol: generate and chat tools, the run_agent tool, every registry
// tool, and the llm://info resource.
package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/lmfoundry/locallm/agent"
	"github.com/lmfoundry/locallm/chatmodel"
	"github.com/lmfoundry/locallm/sampling"
	"github.com/lmfoundry/locallm/textgen"
	"github.com/lmfoundry/locallm/tools"
	mcp_golang "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport/http"
	"github.com/metoro-io/mcp-golang/transport/stdio"
)

var logger = xlog.NewPackageLogger("github.com/lmfoundry/locallm", "mcpserver")

// Registrator is the part of the MCP server the tools are registered on.
type Registrator interface {
	RegisterTool(name string, description string, handler any) error
	RegisterResource(uri string, name string, description string, mimeType string, handler any) error
}

// SamplingArgs are the per-request sampling overrides shared by the
// generate and chat tools. Unset fields fall back to the server's
// configured defaults. Temperature and RepetitionPenalty are pointers
// because an explicit 0 is meaningful for both: greedy decoding, and
// outright suppression of repeated tokens.
type SamplingArgs struct {
	MaxNewTokens      int      `json:"max_new_tokens,omitempty" jsonschema:"description=Maximum tokens to generate"`
	Temperature       *float64 `json:"temperature,omitempty" jsonschema:"description=Sampling temperature; 0 = greedy"`
	TopP              float64  `json:"top_p,omitempty" jsonschema:"description=Nucleus-sampling probability"`
	TopK              int      `json:"top_k,omitempty" jsonschema:"description=Top-k vocabulary filtering; 0 = disabled"`
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty" jsonschema:"description=Penalty for repeating tokens; 1.0 = no penalty; 0 removes repeats"`
	StopSequences     []string `json:"stop_sequences,omitempty" jsonschema:"description=Strings that halt generation when produced"`
	Seed              *int64   `json:"seed,omitempty" jsonschema:"description=RNG seed for reproducible outputs"`
}

// GenerateArgs is the input of the generate tool.
type GenerateArgs struct {
	SamplingArgs
	Prompt string `json:"prompt" jsonschema:"required,description=Raw prompt for text completion"`
}

// ChatArgs is the input of the chat tool.
type ChatArgs struct {
	SamplingArgs
	Messages []chatmodel.Turn `json:"messages" jsonschema:"required,description=Conversation turns with role and content"`
}

// RunAgentArgs is the input of the run_agent tool.
type RunAgentArgs struct {
	Goal     string `json:"goal" jsonschema:"required,description=The task or question for the agent to solve"`
	MaxSteps int    `json:"max_steps,omitempty" jsonschema:"description=Maximum tool-call iterations before stopping"`
}

// ToolArgs wraps a registry tool invocation: the input is the JSON
// object the tool's own schema describes.
type ToolArgs struct {
	Input string `json:"input,omitempty" jsonschema:"description=JSON object of tool arguments"`
}

// Server wires the engine, the agent and the tool registry onto an MCP
// transport.
type Server struct {
	cfg      *Config
	engine   *textgen.Engine
	registry *tools.Registry
	agent    *agent.Orchestrator
	timeout  time.Duration
}

func New(cfg *Config, engine *textgen.Engine, registry *tools.Registry) (*Server, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	cfg.withDefaults()
	if engine == nil {
		return nil, errors.New("generation engine is required")
	}
	if registry == nil {
		registry = tools.NewRegistry()
	}
	ag, err := agent.New(engine, registry, agent.WithName(cfg.Name))
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Agent.RunTimeout()
	if err != nil {
		return nil, errors.WithMessage(err, "invalid agent timeout")
	}
	return &Server{
		cfg:      cfg,
		engine:   engine,
		registry: registry,
		agent:    ag,
		timeout:  timeout,
	}, nil
}

// Register adds the generation tools, the agent, every registry tool and
// the model-info resource to an MCP server.
func (s *Server) Register(reg Registrator) error {
	err := reg.RegisterTool("generate", "Generate text from the local LLM given a raw prompt.", s.handleGenerate)
	if err != nil {
		return errors.WithMessage(err, "failed to register generate")
	}
	err = reg.RegisterTool("chat", "Chat with the local LLM using a conversation history.", s.handleChat)
	if err != nil {
		return errors.WithMessage(err, "failed to register chat")
	}
	err = reg.RegisterTool("run_agent", "Run an autonomous agent that calls tools to accomplish a multi-step goal.", s.handleRunAgent)
	if err != nil {
		return errors.WithMessage(err, "failed to register run_agent")
	}

	for _, tool := range s.registry.List() {
		tool := tool
		// tools that know their argument types advertise their real
		// schemas; anything else is wrapped behind a JSON-string input
		if mcpTool, ok := tool.(tools.IMCPTool); ok {
			if err := mcpTool.RegisterMCP(reg); err != nil {
				return errors.WithMessagef(err, "failed to register %s", tool.Name())
			}
			continue
		}
		err = reg.RegisterTool(tool.Name(), tool.Description(), func(ctx context.Context, args ToolArgs) (*mcp_golang.ToolResponse, error) {
			res, err := s.registry.Execute(ctx, tool.Name(), args.Input)
			if err != nil {
				return nil, err
			}
			return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(res)), nil
		})
		if err != nil {
			return errors.WithMessagef(err, "failed to register %s", tool.Name())
		}
	}

	err = reg.RegisterResource("llm://info", "model_info", "Metadata about the currently loaded model.", "text/plain",
		func() (*mcp_golang.ResourceResponse, error) {
			info := s.engine.Backend().Info()
			return mcp_golang.NewResourceResponse(
				mcp_golang.NewTextEmbeddedResource("llm://info", info.String(), "text/plain")), nil
		})
	if err != nil {
		return errors.WithMessage(err, "failed to register llm://info")
	}
	return nil
}

// Serve runs the server on the configured transport until the transport
// shuts down.
func (s *Server) Serve() error {
	var srv *mcp_golang.Server
	switch s.cfg.Transport {
	case "http":
		logger.KV(xlog.INFO, "status", "listening", "transport", "http", "addr", s.cfg.HTTPAddr)
		srv = mcp_golang.NewServer(
			http.NewHTTPTransport("/mcp").WithAddr(s.cfg.HTTPAddr),
			mcp_golang.WithName(s.cfg.Name))
	default:
		logger.KV(xlog.INFO, "status", "listening", "transport", "stdio")
		srv = mcp_golang.NewServer(
			stdio.NewStdioServerTransport(),
			mcp_golang.WithName(s.cfg.Name))
	}
	if err := s.Register(srv); err != nil {
		return err
	}
	return srv.Serve()
}

func (s *Server) samplingConfig(args SamplingArgs) sampling.Config {
	temperature := s.cfg.Generation.Temperature
	if args.Temperature != nil {
		temperature = *args.Temperature
	}
	penalty := s.cfg.Generation.RepetitionPenalty
	if args.RepetitionPenalty != nil {
		penalty = *args.RepetitionPenalty
	}
	return sampling.Config{
		Temperature:       temperature,
		TopP:              floatCoalesce(args.TopP, s.cfg.Generation.TopP),
		TopK:              values.NumbersCoalesce(args.TopK, s.cfg.Generation.TopK),
		RepetitionPenalty: penalty,
		StopSequences:     args.StopSequences,
		Seed:              args.Seed,
		MaxNewTokens:      values.NumbersCoalesce(args.MaxNewTokens, s.cfg.Generation.MaxNewTokens),
	}
}

func (s *Server) handleGenerate(ctx context.Context, args GenerateArgs) (*mcp_golang.ToolResponse, error) {
	res, err := s.engine.Generate(ctx, args.Prompt, s.samplingConfig(args.SamplingArgs))
	if err != nil {
		return nil, err
	}
	return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(res.Text)), nil
}

func (s *Server) handleChat(ctx context.Context, args ChatArgs) (*mcp_golang.ToolResponse, error) {
	if len(args.Messages) == 0 {
		return nil, errors.New("messages are required")
	}
	conv := make(chatmodel.Conversation, 0, len(args.Messages))
	for _, turn := range args.Messages {
		if !chatmodel.ValidRole(turn.Role) {
			return nil, errors.Newf("invalid role %q", turn.Role)
		}
		conv = append(conv, turn)
	}
	res, err := s.engine.Chat(ctx, conv, s.samplingConfig(args.SamplingArgs))
	if err != nil {
		return nil, err
	}
	return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(res.Text)), nil
}

func (s *Server) handleRunAgent(ctx context.Context, args RunAgentArgs) (*mcp_golang.ToolResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	maxSteps := values.NumbersCoalesce(args.MaxSteps, s.cfg.Agent.MaxSteps)
	out, err := s.agent.Run(ctx, args.Goal, maxSteps)
	if err != nil {
		return nil, err
	}
	text := out.FinalText
	if out.TerminatedBy == agent.TerminatedStepBudget && text == "" {
		text = fmt.Sprintf("Agent stopped after %d steps without a final answer.", maxSteps)
	}
	return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(text)), nil
}
