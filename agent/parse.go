package agent

import (
	"regexp"
	"strings"
)

// Decision classifies what the model asked for in one loop iteration.
type Decision string

const (
	DecisionToolCall    Decision = "tool_call"
	DecisionFinalAnswer Decision = "final_answer"
	// DecisionUnparseable means the output matched neither form. It is a
	// first-class outcome, not an error: the loop issues a corrective turn
	// and continues.
	DecisionUnparseable Decision = "unparseable"
)

var (
	toolRE  = regexp.MustCompile(`(?s)TOOL:\s*(\w+)\s*\nARGS:\s*(\{.*?\})`)
	finalRE = regexp.MustCompile(`(?s)FINAL:\s*(.*)`)
)

// Action is the parsed form of one raw model output.
type Action struct {
	Decision Decision
	// ToolName and ToolArgs are set when Decision is DecisionToolCall.
	// ToolArgs holds the raw JSON object text; it is not parsed here so
	// that argument validation stays with the tool's own schema.
	ToolName string
	ToolArgs string
	// FinalText is set when Decision is DecisionFinalAnswer.
	FinalText string
}

// ParseAction extracts the agent's decision from raw model output. When
// an output carries both a tool-call block and a FINAL block, the tool
// call wins: the agent prefers acting over concluding.
func ParseAction(text string) Action {
	if m := toolRE.FindStringSubmatch(text); m != nil {
		return Action{
			Decision: DecisionToolCall,
			ToolName: m[1],
			ToolArgs: m[2],
		}
	}
	if m := finalRE.FindStringSubmatch(text); m != nil {
		return Action{
			Decision:  DecisionFinalAnswer,
			FinalText: strings.TrimSpace(m[1]),
		}
	}
	return Action{Decision: DecisionUnparseable}
}
