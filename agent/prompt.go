package agent

import (
	"strings"

	"github.com/lmfoundry/locallm/tools"
)

const promptHeader = `You are an autonomous agent. Accomplish the user's goal by reasoning step by step and calling tools when needed.

TOOLS AVAILABLE:
`

const promptGrammar = `
To call a tool, output EXACTLY this format (nothing else on those lines):
TOOL: <tool_name>
ARGS: <json object>

Example:
TOOL: get_weather
ARGS: {"location": "Tokyo", "units": "metric"}

When you have enough information to answer the user, output:
FINAL: <your answer>

Rules:
- Only call one tool per response.
- Always output either a TOOL block OR a FINAL block, never both.
- After receiving a tool result it will be shown in a tool turn. Use it to continue.`

// correctiveMessage is appended as a tool turn when the model's output
// matched neither the TOOL nor the FINAL form.
const correctiveMessage = `Your response did not match the required format. Reply with EXACTLY one of:
TOOL: <tool_name>
ARGS: <json object>
or:
FINAL: <your answer>`

// SystemPrompt renders the agent's system instruction, listing the
// registry's tools with their parameter schemas and the output grammar
// the model must follow.
func SystemPrompt(registry *tools.Registry) string {
	var sb strings.Builder
	sb.WriteString(promptHeader)
	sb.WriteString(registry.Descriptions())
	sb.WriteString(promptGrammar)
	return sb.String()
}
