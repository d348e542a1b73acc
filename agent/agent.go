// Package agent implements the ReAct orchestrator: a bounded loop that
// alternates between querying the model for a decision and dispatching
// tool calls, feeding every result back into the conversation.
package agent

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
	"github.com/lmfoundry/locallm/chatmodel"
	"github.com/lmfoundry/locallm/metricskey"
	"github.com/lmfoundry/locallm/sampling"
	"github.com/lmfoundry/locallm/textgen"
	"github.com/lmfoundry/locallm/tools"
)

var logger = xlog.NewPackageLogger("github.com/lmfoundry/locallm", "agent")

// DefaultMaxSteps bounds an agent run when the caller does not supply a
// step budget.
const DefaultMaxSteps = 10

const (
	defaultMaxNewTokens = 512
	// Lower temperature than plain chat keeps tool-call output closer to
	// the required grammar.
	defaultTemperature = 0.3
	defaultTopP        = 0.9
)

// ChatModel produces the assistant's next reply for a conversation.
// *textgen.Engine satisfies it.
type ChatModel interface {
	Chat(ctx context.Context, conv chatmodel.Conversation, cfg sampling.Config) (*textgen.Result, error)
}

// TerminationReason distinguishes how a run ended.
type TerminationReason string

const (
	// TerminatedFinalAnswer means the model explicitly marked its answer
	// final within the step budget.
	TerminatedFinalAnswer TerminationReason = "final_answer"
	// TerminatedStepBudget means the budget (or the caller's deadline) ran
	// out first; FinalText is then the last raw model output, best effort.
	TerminatedStepBudget TerminationReason = "step_budget_exhausted"
)

// Step is one record of the agent's trace, created per loop iteration
// and never mutated afterwards.
type Step struct {
	Index      int
	Decision   Decision
	ToolName   string
	ToolArgs   string
	ToolResult string
	RawOutput  string
}

// Outcome is the result of one agent run. Steps holds the full trace for
// diagnostics; most callers surface only FinalText.
type Outcome struct {
	FinalText    string
	Steps        []Step
	TerminatedBy TerminationReason
}

// Orchestrator drives the agent loop over one model and one closed tool
// registry. Runs are strictly sequential: one model query or tool call
// at a time.
type Orchestrator struct {
	name     string
	model    ChatModel
	registry *tools.Registry
	cfg      sampling.Config
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithName sets the agent name used in logs and metrics.
func WithName(name string) Option {
	return func(a *Orchestrator) {
		a.name = name
	}
}

// WithSamplingConfig overrides the generation parameters used for each
// model query.
func WithSamplingConfig(cfg sampling.Config) Option {
	return func(a *Orchestrator) {
		a.cfg = cfg
	}
}

func New(model ChatModel, registry *tools.Registry, ops ...Option) (*Orchestrator, error) {
	if model == nil {
		return nil, errors.New("chat model is required")
	}
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	a := &Orchestrator{
		name:     "agent",
		model:    model,
		registry: registry,
		cfg: sampling.Config{
			Temperature:       defaultTemperature,
			TopP:              defaultTopP,
			RepetitionPenalty: 1.0,
			MaxNewTokens:      defaultMaxNewTokens,
		},
	}
	for _, op := range ops {
		op(a)
	}
	return a, nil
}

// Run executes the loop for a goal until the model signals a final
// answer or maxSteps iterations are consumed. maxSteps <= 0 selects
// DefaultMaxSteps. Cancellation is honored at step boundaries and is
// folded into a budget-exhausted outcome rather than an error, so a
// caller-supplied timeout always yields a consistent Outcome.
func (a *Orchestrator) Run(ctx context.Context, goal string, maxSteps int) (*Outcome, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	started := time.Now()
	defer metricskey.PerfAgentRun.MeasureSince(started, a.name)

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "agent_started",
		"agent", a.name,
		"goal", goal,
		"max_steps", maxSteps,
	)

	conv := chatmodel.New(SystemPrompt(a.registry), goal)
	outcome := &Outcome{TerminatedBy: TerminatedStepBudget}

	for stepIdx := 0; stepIdx < maxSteps; stepIdx++ {
		if ctx.Err() != nil {
			break
		}

		res, err := a.model.Chat(ctx, conv, a.cfg)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return nil, errors.WithMessagef(err, "agent %q failed at step %d", a.name, stepIdx)
		}

		raw := res.Text
		action := ParseAction(raw)
		metricskey.StatsAgentSteps.IncrCounter(1, string(action.Decision))
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "agent_step",
			"agent", a.name,
			"step", stepIdx,
			"decision", action.Decision,
			"raw", slices.StringUpto(raw, 300),
		)

		step := Step{
			Index:     stepIdx,
			Decision:  action.Decision,
			RawOutput: raw,
		}

		switch action.Decision {
		case DecisionFinalAnswer:
			outcome.Steps = append(outcome.Steps, step)
			outcome.FinalText = action.FinalText
			outcome.TerminatedBy = TerminatedFinalAnswer
			logger.ContextKV(ctx, xlog.DEBUG,
				"status", "agent_final_answer",
				"agent", a.name,
				"steps", stepIdx+1,
			)
			return outcome, nil

		case DecisionToolCall:
			step.ToolName = action.ToolName
			step.ToolArgs = action.ToolArgs
			step.ToolResult = a.dispatch(ctx, action)
			conv = conv.Append(chatmodel.RoleAssistant, raw)
			conv = conv.Append(chatmodel.RoleTool, step.ToolResult)

		default:
			metricskey.StatsAgentParseErrors.IncrCounter(1, a.name)
			logger.ContextKV(ctx, xlog.WARNING,
				"status", "agent_unparseable_output",
				"agent", a.name,
				"step", stepIdx,
			)
			conv = conv.Append(chatmodel.RoleAssistant, raw)
			conv = conv.Append(chatmodel.RoleTool, correctiveMessage)
		}

		outcome.Steps = append(outcome.Steps, step)
		outcome.FinalText = raw
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "agent_step_budget_exhausted",
		"agent", a.name,
		"steps", len(outcome.Steps),
	)
	return outcome, nil
}

// dispatch executes one tool call and renders the result (or failure) as
// the text fed back to the model. Tool-level failures never abort the
// run; the model is expected to read the message and self-correct.
func (a *Orchestrator) dispatch(ctx context.Context, action Action) string {
	res, err := a.registry.Execute(ctx, action.ToolName, action.ToolArgs)
	if err == nil {
		return res
	}
	if errors.IsAny(err, tools.ErrToolNotFound, tools.ErrFailedUnmarshalInput, tools.ErrInvalidArguments) {
		return err.Error()
	}
	return "Tool call failed: " + err.Error()
}
