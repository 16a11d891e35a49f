package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/openagent-dev/openagent/internal/event"
	"github.com/openagent-dev/openagent/internal/permission"
)

const editDescription = `Performs exact string replacements in an existing file.

Usage:
- The path may be absolute or relative to the workspace root
- The old_string must exist in the file
- The edit fails if old_string is not unique, unless replace_all is set`

// fuzzyMatchThreshold is the minimum similarity for the fallback match when
// the exact old_string is not found.
const fuzzyMatchThreshold = 0.9

// EditTool rewrites parts of existing files.
type EditTool struct{}

// EditInput represents the input for the edit tool.
type EditInput struct {
	Path       string `json:"path"`
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all,omitempty"`
}

// NewEditTool creates a new edit tool.
func NewEditTool() *EditTool { return &EditTool{} }

func (t *EditTool) Name() string        { return "edit_file" }
func (t *EditTool) Description() string { return editDescription }

func (t *EditTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "The file to edit"
			},
			"old_string": {
				"type": "string",
				"description": "The exact text to replace"
			},
			"new_string": {
				"type": "string",
				"description": "The text to replace it with"
			},
			"replace_all": {
				"type": "boolean",
				"description": "Replace all occurrences (default: false)"
			}
		},
		"required": ["path", "old_string", "new_string"]
	}`)
}

func (t *EditTool) PermissionRequest(input json.RawMessage, tc *Context) (permission.Request, error) {
	var params EditInput
	if err := json.Unmarshal(input, &params); err != nil {
		return permission.Request{}, fmt.Errorf("invalid input: %w", err)
	}

	path := tc.Resolve(params.Path)
	content, err := os.ReadFile(path)
	if err != nil {
		return permission.Request{}, fmt.Errorf("failed to read file: %w", err)
	}

	newText, _, err := applyEdit(string(content), params)
	if err != nil {
		return permission.Request{}, err
	}

	return permission.Request{
		Operation: permission.OpEditFile,
		Details: map[string]any{
			"path": path,
			"diff": contentDiff(string(content), newText),
		},
	}, nil
}

func (t *EditTool) Execute(ctx context.Context, input json.RawMessage, tc *Context) (*Result, error) {
	var params EditInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if params.OldString == params.NewString {
		return nil, fmt.Errorf("old_string and new_string must be different")
	}

	path := tc.Resolve(params.Path)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	newText, count, err := applyEdit(string(content), params)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, []byte(newText), 0644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	event.Publish(event.Event{
		Type: event.FileEdited,
		Data: event.FileEditedData{File: path},
	})

	return &Result{
		Title:  fmt.Sprintf("Edited %s", filepath.Base(path)),
		Output: fmt.Sprintf("Replaced %d occurrence(s)", count),
		Metadata: map[string]any{
			"file":         path,
			"replacements": count,
			"diff":         contentDiff(string(content), newText),
		},
	}, nil
}

// applyEdit performs the replacement against text, falling back to a fuzzy
// line-window match when the exact old_string is absent.
func applyEdit(text string, params EditInput) (string, int, error) {
	old := params.OldString
	count := strings.Count(text, old)

	if count == 0 {
		match, ok := fuzzyFind(text, old)
		if !ok {
			return "", 0, fmt.Errorf("old_string not found in file")
		}
		old = match
		count = strings.Count(text, old)
	}

	if params.ReplaceAll {
		return strings.ReplaceAll(text, old, params.NewString), count, nil
	}

	if count > 1 {
		return "", 0, fmt.Errorf("old_string appears %d times in file, use replace_all or provide more context", count)
	}
	return strings.Replace(text, old, params.NewString, 1), 1, nil
}

// fuzzyFind slides a window of the same line count as target over text and
// returns the closest window above the similarity threshold.
func fuzzyFind(text, target string) (string, bool) {
	targetLines := strings.Split(target, "\n")
	textLines := strings.Split(text, "\n")
	if len(targetLines) > len(textLines) {
		return "", false
	}

	best := ""
	bestScore := 0.0
	for i := 0; i+len(targetLines) <= len(textLines); i++ {
		window := strings.Join(textLines[i:i+len(targetLines)], "\n")
		dist := levenshtein.ComputeDistance(window, target)
		longest := len(window)
		if len(target) > longest {
			longest = len(target)
		}
		if longest == 0 {
			continue
		}
		score := 1.0 - float64(dist)/float64(longest)
		if score > bestScore {
			bestScore = score
			best = window
		}
	}

	if bestScore < fuzzyMatchThreshold {
		return "", false
	}
	return best, true
}
