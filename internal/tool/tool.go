// Package tool provides the tool framework: the Tool interface, a dynamic
// registry, and the built-in workspace tools.
package tool

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/openagent-dev/openagent/internal/permission"
)

// Tool defines the interface for all tools.
type Tool interface {
	// Name returns the tool identifier used in model tool calls.
	Name() string

	// Description returns the tool description shown to the model.
	Description() string

	// Parameters returns the JSON Schema for tool parameters.
	Parameters() json.RawMessage

	// Execute runs the tool with the given input.
	Execute(ctx context.Context, input json.RawMessage, tc *Context) (*Result, error)
}

// Permissioned is implemented by tools whose execution has side effects.
// The dispatcher resolves the returned request through the permission
// channel before calling Execute; tools without this interface run
// unconditionally.
type Permissioned interface {
	PermissionRequest(input json.RawMessage, tc *Context) (permission.Request, error)
}

// Context carries per-call execution context into tools.
type Context struct {
	// WorkDir is the workspace root relative paths resolve against.
	WorkDir string

	// CallID is the model-assigned identifier of the originating tool call.
	CallID string
}

// Resolve turns a possibly relative path into an absolute one under the
// workspace.
func (c *Context) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.WorkDir, path)
}

// Result represents the output of a tool execution.
type Result struct {
	Title    string         `json:"title"`
	Output   string         `json:"output"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// FuncTool adapts a plain function into a Tool. Used for tools registered
// at runtime.
type FuncTool struct {
	name        string
	description string
	parameters  json.RawMessage
	execute     func(ctx context.Context, input json.RawMessage, tc *Context) (*Result, error)
}

// NewFuncTool creates a tool from a function.
func NewFuncTool(name, description string, params json.RawMessage, execute func(context.Context, json.RawMessage, *Context) (*Result, error)) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		parameters:  params,
		execute:     execute,
	}
}

func (t *FuncTool) Name() string                { return t.name }
func (t *FuncTool) Description() string         { return t.description }
func (t *FuncTool) Parameters() json.RawMessage { return t.parameters }

func (t *FuncTool) Execute(ctx context.Context, input json.RawMessage, tc *Context) (*Result, error) {
	return t.execute(ctx, input, tc)
}
