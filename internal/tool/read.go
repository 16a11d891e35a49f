package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const readDescription = `Reads a file from the workspace.

Usage:
- The path may be absolute or relative to the workspace root
- Output is numbered by line
- Use offset and limit to page through large files`

const (
	maxReadLines    = 2000
	maxReadLineSize = 2000
)

// ReadTool reads file contents.
type ReadTool struct{}

// ReadInput represents the input for the read tool.
type ReadInput struct {
	Path   string `json:"path"`
	Offset int    `json:"offset,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// NewReadTool creates a new read tool.
func NewReadTool() *ReadTool { return &ReadTool{} }

func (t *ReadTool) Name() string        { return "read_file" }
func (t *ReadTool) Description() string { return readDescription }

func (t *ReadTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "The file to read"
			},
			"offset": {
				"type": "integer",
				"description": "Line number to start from (1-based)"
			},
			"limit": {
				"type": "integer",
				"description": "Maximum number of lines to return"
			}
		},
		"required": ["path"]
	}`)
}

func (t *ReadTool) Execute(ctx context.Context, input json.RawMessage, tc *Context) (*Result, error) {
	var params ReadInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	path := tc.Resolve(params.Path)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	lines := strings.Split(string(content), "\n")
	offset := params.Offset
	if offset < 1 {
		offset = 1
	}
	limit := params.Limit
	if limit <= 0 || limit > maxReadLines {
		limit = maxReadLines
	}

	if offset > len(lines) {
		return nil, fmt.Errorf("offset %d is past the end of the file (%d lines)", offset, len(lines))
	}

	end := offset - 1 + limit
	if end > len(lines) {
		end = len(lines)
	}

	var sb strings.Builder
	for i := offset - 1; i < end; i++ {
		line := lines[i]
		if len(line) > maxReadLineSize {
			line = line[:maxReadLineSize] + "..."
		}
		fmt.Fprintf(&sb, "%6d\t%s\n", i+1, line)
	}

	truncated := end < len(lines)
	output := sb.String()
	if truncated {
		output += fmt.Sprintf("... %d more lines, use offset to continue\n", len(lines)-end)
	}

	return &Result{
		Title:  fmt.Sprintf("Read %s", filepath.Base(path)),
		Output: output,
		Metadata: map[string]any{
			"file":      path,
			"lines":     end - (offset - 1),
			"truncated": truncated,
		},
	}, nil
}
