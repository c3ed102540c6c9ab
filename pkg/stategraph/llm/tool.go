package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/randalmurphal/stategraph/pkg/stategraph/registry"
)

// ToolHandler executes a tool call with its raw JSON arguments and
// returns the result content to feed back to the model.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// ToolRegistry holds the tools available to an agent loop. It is safe
// for concurrent use.
type ToolRegistry struct {
	tools *registry.Registry[string, registeredTool]
}

type registeredTool struct {
	def     Tool
	handler ToolHandler
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: registry.New[string, registeredTool](),
	}
}

// Register adds a tool definition and its handler. Registering the same
// name twice replaces the earlier entry.
func (r *ToolRegistry) Register(def Tool, handler ToolHandler) {
	r.tools.Register(def.Name, registeredTool{def: def, handler: handler})
}

// Has reports whether a tool with the given name is registered.
func (r *ToolRegistry) Has(name string) bool {
	return r.tools.Has(name)
}

// Definitions returns the registered tool definitions sorted by name,
// ready to attach to a CompletionRequest.
func (r *ToolRegistry) Definitions() []Tool {
	defs := make([]Tool, 0, r.tools.Len())
	r.tools.Range(func(_ string, t registeredTool) bool {
		defs = append(defs, t.def)
		return true
	})
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Execute runs the handler for a tool call and returns a tool result
// message keyed by the call's ID. A call naming an unregistered tool
// returns an error result message rather than failing the loop, so the
// model can recover.
func (r *ToolRegistry) Execute(ctx context.Context, call ToolCall) (Message, error) {
	t, ok := r.tools.Get(call.Name)
	if !ok {
		msg := fmt.Sprintf("unknown tool %q", call.Name)
		return NewToolResultMessage(call.ID, call.Name, msg), NewError("tool", fmt.Errorf("%s", msg), false)
	}

	result, err := t.handler(ctx, call.Arguments)
	if err != nil {
		return NewToolResultMessage(call.ID, call.Name, "error: "+err.Error()), nil
	}

	return NewToolResultMessage(call.ID, call.Name, result), nil
}

// ExecuteAll runs every tool call in order and returns the result
// messages. Execution stops at the first unregistered tool.
func (r *ToolRegistry) ExecuteAll(ctx context.Context, calls []ToolCall) ([]Message, error) {
	msgs := make([]Message, 0, len(calls))
	for _, call := range calls {
		msg, err := r.Execute(ctx, call)
		if err != nil {
			return msgs, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
