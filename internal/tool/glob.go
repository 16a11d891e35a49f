package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const globDescription = `Finds files by glob pattern.

Usage:
- Supports patterns like "**/*.go" or "src/**/*.ts"
- Matches are sorted by modification time, newest first
- Use this tool to find files by name`

const maxGlobMatches = 100

// GlobTool matches files against glob patterns.
type GlobTool struct{}

// GlobInput represents the input for the glob tool.
type GlobInput struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`
}

// NewGlobTool creates a new glob tool.
func NewGlobTool() *GlobTool { return &GlobTool{} }

func (t *GlobTool) Name() string        { return "glob" }
func (t *GlobTool) Description() string { return globDescription }

func (t *GlobTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"pattern": {
				"type": "string",
				"description": "The glob pattern to match files against"
			},
			"path": {
				"type": "string",
				"description": "Directory to search in (default: workspace root)"
			}
		},
		"required": ["pattern"]
	}`)
}

func (t *GlobTool) Execute(ctx context.Context, input json.RawMessage, tc *Context) (*Result, error) {
	var params GlobInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	base := tc.WorkDir
	if params.Path != "" {
		base = tc.Resolve(params.Path)
	}

	matches, err := doublestar.Glob(os.DirFS(base), params.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}

	type match struct {
		path string
		mod  time.Time
	}
	found := make([]match, 0, len(matches))
	for _, m := range matches {
		full := base + string(os.PathSeparator) + m
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		found = append(found, match{path: m, mod: info.ModTime()})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].mod.After(found[j].mod) })

	truncated := false
	if len(found) > maxGlobMatches {
		found = found[:maxGlobMatches]
		truncated = true
	}

	paths := make([]string, len(found))
	for i, m := range found {
		paths[i] = m.path
	}

	output := strings.Join(paths, "\n")
	if len(paths) == 0 {
		output = "No files found"
	} else if truncated {
		output += fmt.Sprintf("\n... first %d matches shown", maxGlobMatches)
	}

	return &Result{
		Title:  fmt.Sprintf("Glob %s", params.Pattern),
		Output: output,
		Metadata: map[string]any{
			"pattern": params.Pattern,
			"matches": len(paths),
		},
	}, nil
}
