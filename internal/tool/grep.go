package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const grepDescription = `Searches file contents with a regular expression.

Usage:
- The pattern uses Go regular expression syntax
- Use include to restrict the search to files matching a glob, e.g. "*.go"
- Matches are reported as path:line:text`

const (
	maxGrepMatches  = 100
	maxGrepLineSize = 250
)

var grepSkipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// GrepTool searches file contents.
type GrepTool struct{}

// GrepInput represents the input for the grep tool.
type GrepInput struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`
	Include string `json:"include,omitempty"`
}

// NewGrepTool creates a new grep tool.
func NewGrepTool() *GrepTool { return &GrepTool{} }

func (t *GrepTool) Name() string        { return "grep" }
func (t *GrepTool) Description() string { return grepDescription }

func (t *GrepTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"pattern": {
				"type": "string",
				"description": "The regular expression to search for"
			},
			"path": {
				"type": "string",
				"description": "Directory to search in (default: workspace root)"
			},
			"include": {
				"type": "string",
				"description": "Glob filter for file names, e.g. *.go"
			}
		},
		"required": ["pattern"]
	}`)
}

func (t *GrepTool) Execute(ctx context.Context, input json.RawMessage, tc *Context) (*Result, error) {
	var params GrepInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	re, err := regexp.Compile(params.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	base := tc.WorkDir
	if params.Path != "" {
		base = tc.Resolve(params.Path)
	}

	var matches []string
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if grepSkipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if len(matches) >= maxGrepMatches {
			return filepath.SkipAll
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			rel = path
		}
		if params.Include != "" {
			ok, err := doublestar.Match(params.Include, filepath.Base(path))
			if err != nil || !ok {
				return nil
			}
		}

		content, err := os.ReadFile(path)
		if err != nil || bytes.IndexByte(content, 0) >= 0 {
			return nil
		}

		for i, line := range strings.Split(string(content), "\n") {
			if !re.MatchString(line) {
				continue
			}
			if len(line) > maxGrepLineSize {
				line = line[:maxGrepLineSize] + "..."
			}
			matches = append(matches, fmt.Sprintf("%s:%d:%s", rel, i+1, line))
			if len(matches) >= maxGrepMatches {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	output := strings.Join(matches, "\n")
	if len(matches) == 0 {
		output = "No matches found"
	} else if len(matches) >= maxGrepMatches {
		output += fmt.Sprintf("\n... first %d matches shown", maxGrepMatches)
	}

	return &Result{
		Title:  fmt.Sprintf("Grep %s", params.Pattern),
		Output: output,
		Metadata: map[string]any{
			"pattern": params.Pattern,
			"matches": len(matches),
		},
	}, nil
}
