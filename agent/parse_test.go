package agent_test

import (
	"testing"

	"github.com/lmfoundry/locallm/agent"
	"github.com/stretchr/testify/assert"
)

func TestParseAction(t *testing.T) {
	t.Parallel()

	tcases := []struct {
		name string
		text string
		exp  agent.Action
	}{
		{
			name: "tool call",
			text: "I should check the weather.\nTOOL: get_weather\nARGS: {\"location\": \"Tokyo\"}",
			exp: agent.Action{
				Decision: agent.DecisionToolCall,
				ToolName: "get_weather",
				ToolArgs: `{"location": "Tokyo"}`,
			},
		},
		{
			name: "tool call with multiline args",
			text: "TOOL: fetch_url\nARGS: {\n  \"url\": \"https://example.com\"\n}",
			exp: agent.Action{
				Decision: agent.DecisionToolCall,
				ToolName: "fetch_url",
				ToolArgs: "{\n  \"url\": \"https://example.com\"\n}",
			},
		},
		{
			name: "final answer",
			text: "FINAL: The answer is 4.",
			exp: agent.Action{
				Decision:  agent.DecisionFinalAnswer,
				FinalText: "The answer is 4.",
			},
		},
		{
			name: "final answer multiline trimmed",
			text: "Some reasoning first.\nFINAL: line one\nline two\n",
			exp: agent.Action{
				Decision:  agent.DecisionFinalAnswer,
				FinalText: "line one\nline two",
			},
		},
		{
			name: "both present tool wins",
			text: "TOOL: get_datetime\nARGS: {}\nFINAL: it is noon",
			exp: agent.Action{
				Decision: agent.DecisionToolCall,
				ToolName: "get_datetime",
				ToolArgs: "{}",
			},
		},
		{
			name: "unparseable",
			text: "I think the answer might be 4, but let me think more.",
			exp:  agent.Action{Decision: agent.DecisionUnparseable},
		},
		{
			name: "tool without args block is unparseable",
			text: "TOOL: get_weather",
			exp:  agent.Action{Decision: agent.DecisionUnparseable},
		},
		{
			name: "empty",
			text: "",
			exp:  agent.Action{Decision: agent.DecisionUnparseable},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, agent.ParseAction(tc.text))
		})
	}
}
