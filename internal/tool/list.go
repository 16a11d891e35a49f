package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

const listDescription = `Lists the entries of a directory.

Usage:
- The path may be absolute or relative to the workspace root
- Defaults to the workspace root when no path is given
- Directories are suffixed with a slash`

const maxListEntries = 500

// ListTool lists directory contents.
type ListTool struct{}

// ListInput represents the input for the list tool.
type ListInput struct {
	Path string `json:"path,omitempty"`
}

// NewListTool creates a new list tool.
func NewListTool() *ListTool { return &ListTool{} }

func (t *ListTool) Name() string        { return "list_directory" }
func (t *ListTool) Description() string { return listDescription }

func (t *ListTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "The directory to list (default: workspace root)"
			}
		}
	}`)
}

func (t *ListTool) Execute(ctx context.Context, input json.RawMessage, tc *Context) (*Result, error) {
	var params ListInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	path := tc.WorkDir
	if params.Path != "" {
		path = tc.Resolve(params.Path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	truncated := false
	if len(names) > maxListEntries {
		names = names[:maxListEntries]
		truncated = true
	}

	output := strings.Join(names, "\n")
	if truncated {
		output += fmt.Sprintf("\n... %d entries shown, directory has more", maxListEntries)
	}

	return &Result{
		Title:  fmt.Sprintf("Listed %s", path),
		Output: output,
		Metadata: map[string]any{
			"path":    path,
			"entries": len(entries),
		},
	}, nil
}
