// Package metricskey describes the metrics emitted by this repo.
package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsGenerationsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_generations_succeeded",
		Help:         "stats_generations_succeeded provides total generation calls succeeded",
		RequiredTags: []string{"op"},
	}

	StatsGenerationsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_generations_failed",
		Help:         "stats_generations_failed provides total generation calls failed",
		RequiredTags: []string{"op"},
	}

	StatsTokensGenerated = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tokens_generated",
		Help:         "stats_tokens_generated provides total tokens produced by the generation loop",
		RequiredTags: []string{"reason"},
	}

	StatsAgentSteps = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_agent_steps",
		Help:         "stats_agent_steps provides total agent loop steps by decision",
		RequiredTags: []string{"decision"},
	}

	StatsAgentParseErrors = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_agent_parse_errors",
		Help:         "stats_agent_parse_errors provides total unparseable agent decisions",
		RequiredTags: []string{"agent"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls to unknown tools",
		RequiredTags: []string{"tool"},
	}
)

// Perf
var (
	PerfGeneration = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_generation",
		Help:         "perf_generation provides duration of one generation loop run",
		RequiredTags: []string{"op"},
	}

	PerfAgentRun = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_agent_run",
		Help:         "perf_agent_run provides duration of one agent run",
		RequiredTags: []string{"agent"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfAgentRun,
	&PerfGeneration,
	&PerfToolCall,
	&StatsAgentParseErrors,
	&StatsAgentSteps,
	&StatsGenerationsFailed,
	&StatsGenerationsSucceeded,
	&StatsTokensGenerated,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
}
