// Package tools implements the typed calendar operations agents may invoke.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/planwise-ai/calendar-assistant/internal/llm"
)

// Tool is one typed operation the model may request. Each call wraps
// exactly one calendar-service call.
type Tool interface {
	// Name returns the tool's wire name.
	Name() string

	// Definition returns the declared input schema for the model.
	Definition() llm.ToolDefinition

	// Call executes the tool with schema-validated arguments and returns
	// a JSON-encoded result for the tool-result message.
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// Toolset is a named collection of tools available to one agent.
type Toolset struct {
	tools  []Tool
	byName map[string]Tool
}

// NewToolset creates a toolset from the given tools.
func NewToolset(tools ...Tool) Toolset {
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	return Toolset{tools: tools, byName: byName}
}

// Definitions returns the schema declarations for all tools.
func (s Toolset) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, len(s.tools))
	for i, t := range s.tools {
		defs[i] = t.Definition()
	}
	return defs
}

// Lookup returns the tool with the given name.
func (s Toolset) Lookup(name string) (Tool, error) {
	t, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return t, nil
}

// Empty reports whether the toolset has no tools.
func (s Toolset) Empty() bool {
	return len(s.tools) == 0
}
