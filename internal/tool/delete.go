package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openagent-dev/openagent/internal/permission"
)

const deleteDescription = `Deletes a single file from the workspace.

Usage:
- The path may be absolute or relative to the workspace root
- Directories are not deleted`

// DeleteTool removes files.
type DeleteTool struct{}

// DeleteInput represents the input for the delete tool.
type DeleteInput struct {
	Path string `json:"path"`
}

// NewDeleteTool creates a new delete tool.
func NewDeleteTool() *DeleteTool { return &DeleteTool{} }

func (t *DeleteTool) Name() string        { return "delete_file" }
func (t *DeleteTool) Description() string { return deleteDescription }

func (t *DeleteTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "The file to delete"
			}
		},
		"required": ["path"]
	}`)
}

func (t *DeleteTool) PermissionRequest(input json.RawMessage, tc *Context) (permission.Request, error) {
	var params DeleteInput
	if err := json.Unmarshal(input, &params); err != nil {
		return permission.Request{}, fmt.Errorf("invalid input: %w", err)
	}
	return permission.Request{
		Operation: permission.OpDeleteFile,
		Details:   map[string]any{"path": tc.Resolve(params.Path)},
	}, nil
}

func (t *DeleteTool) Execute(ctx context.Context, input json.RawMessage, tc *Context) (*Result, error) {
	var params DeleteInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	path := tc.Resolve(params.Path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("failed to delete file: %w", err)
	}

	return &Result{
		Title:    fmt.Sprintf("Deleted %s", filepath.Base(path)),
		Output:   fmt.Sprintf("Deleted %s", path),
		Metadata: map[string]any{"file": path},
	}, nil
}
