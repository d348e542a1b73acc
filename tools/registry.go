package tools

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/lmfoundry/locallm/llmutils"
	"github.com/lmfoundry/locallm/metricskey"
)

var logger = xlog.NewPackageLogger("github.com/lmfoundry/locallm", "tools")

// ErrToolNotFound means the requested tool name is not registered.
var ErrToolNotFound = errors.New("tool not found")

// Registry is the closed set of tools available to one agent. Lookup is
// case-insensitive; registration order is preserved for prompt rendering.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]ITool
	names  []string
	list   []ITool

	callback Callback
}

func NewRegistry(list ...ITool) *Registry {
	r := &Registry{
		byName: make(map[string]ITool, len(list)),
	}
	for _, tool := range list {
		r.Register(tool)
	}
	return r
}

// WithCallback sets an observer for tool execution.
func (r *Registry) WithCallback(cb Callback) *Registry {
	r.callback = cb
	return r
}

// Register adds a tool. A tool with an already-registered name is
// ignored, matching first-wins semantics.
func (r *Registry) Register(tool ITool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(tool.Name())
	if _, ok := r.byName[key]; ok {
		return
	}
	r.byName[key] = tool
	r.names = append(r.names, tool.Name())
	r.list = append(r.list, tool)
}

// Lookup finds a tool by name, ignoring case.
func (r *Registry) Lookup(name string) (ITool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.byName[strings.ToLower(name)]
	return tool, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// List returns the registered tools in registration order.
func (r *Registry) List() []ITool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ITool(nil), r.list...)
}

// Execute dispatches one tool call synchronously. Unknown names return
// ErrToolNotFound; tool failures are returned for the caller to surface
// as a result turn.
func (r *Registry) Execute(ctx context.Context, name, input string) (string, error) {
	tool, ok := r.Lookup(name)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_not_found",
			"tool", name,
			"available_tools", strings.Join(r.Names(), ", "),
		)
		return "", errors.WithMessagef(ErrToolNotFound, "%q; available tools: %s", name, strings.Join(r.Names(), ", "))
	}

	if r.callback != nil {
		r.callback.OnToolStart(ctx, tool, input)
	}
	started := time.Now()
	res, err := tool.Call(ctx, input)
	metricskey.PerfToolCall.MeasureSince(started, tool.Name())

	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, tool.Name())
		if r.callback != nil {
			r.callback.OnToolError(ctx, tool, input, err)
		}
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_call_failed",
			"tool", tool.Name(),
			"err", err.Error(),
		)
		return "", err
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, tool.Name())
	if r.callback != nil {
		r.callback.OnToolEnd(ctx, tool, input, res)
	}
	return res, nil
}

type toolDescription struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
	Parameters  any    `json:"Parameters,omitempty"`
}

// Descriptions renders the registered tools as an indented JSON block for
// inclusion in a prompt.
func (r *Registry) Descriptions() string {
	var ds []toolDescription
	for _, tool := range r.List() {
		ds = append(ds, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(ds))
}
