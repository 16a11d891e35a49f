package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openagent-dev/openagent/internal/event"
	"github.com/openagent-dev/openagent/internal/permission"
)

const createDescription = `Creates a file with the given content, overwriting it if it exists.

Usage:
- The path may be absolute or relative to the workspace root
- Parent directories are created as needed
- Prefer edit_file for changing an existing file`

// CreateTool writes new files.
type CreateTool struct{}

// CreateInput represents the input for the create tool.
type CreateInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// NewCreateTool creates a new create tool.
func NewCreateTool() *CreateTool { return &CreateTool{} }

func (t *CreateTool) Name() string        { return "create_file" }
func (t *CreateTool) Description() string { return createDescription }

func (t *CreateTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "The file to create"
			},
			"content": {
				"type": "string",
				"description": "The content to write"
			}
		},
		"required": ["path", "content"]
	}`)
}

func (t *CreateTool) PermissionRequest(input json.RawMessage, tc *Context) (permission.Request, error) {
	var params CreateInput
	if err := json.Unmarshal(input, &params); err != nil {
		return permission.Request{}, fmt.Errorf("invalid input: %w", err)
	}

	path := tc.Resolve(params.Path)
	details := map[string]any{"path": path}

	if existing, err := os.ReadFile(path); err == nil {
		details["diff"] = contentDiff(string(existing), params.Content)
	} else {
		details["content"] = params.Content
	}

	return permission.Request{Operation: permission.OpCreateFile, Details: details}, nil
}

func (t *CreateTool) Execute(ctx context.Context, input json.RawMessage, tc *Context) (*Result, error) {
	var params CreateInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	path := tc.Resolve(params.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(params.Content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	event.Publish(event.Event{
		Type: event.FileEdited,
		Data: event.FileEditedData{File: path},
	})

	return &Result{
		Title:  fmt.Sprintf("Created %s", filepath.Base(path)),
		Output: fmt.Sprintf("Wrote %d bytes to %s", len(params.Content), path),
		Metadata: map[string]any{
			"file":  path,
			"bytes": len(params.Content),
		},
	}, nil
}
