package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/openagent-dev/openagent/internal/permission"
)

const (
	DefaultCommandTimeout = 120 * time.Second
	MaxCommandTimeout     = 10 * time.Minute
	MaxCommandOutput      = 30000
)

const bashDescription = `Executes a shell command in the workspace.

Usage:
- Command is required
- Optional timeout in seconds (max 600)
- Output is captured from stdout and stderr`

// BashTool runs shell commands.
type BashTool struct {
	shell string
}

// BashInput represents the input for the bash tool.
type BashInput struct {
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// NewBashTool creates a new bash tool.
func NewBashTool() *BashTool {
	return &BashTool{shell: detectShell()}
}

func detectShell() string {
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	if bash, err := exec.LookPath("bash"); err == nil {
		return bash
	}
	return "/bin/sh"
}

func (t *BashTool) Name() string        { return "run_command" }
func (t *BashTool) Description() string { return bashDescription }

func (t *BashTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"command": {
				"type": "string",
				"description": "The shell command to execute"
			},
			"timeout": {
				"type": "integer",
				"description": "Optional timeout in seconds (max 600)"
			}
		},
		"required": ["command"]
	}`)
}

func (t *BashTool) PermissionRequest(input json.RawMessage, tc *Context) (permission.Request, error) {
	var params BashInput
	if err := json.Unmarshal(input, &params); err != nil {
		return permission.Request{}, fmt.Errorf("invalid input: %w", err)
	}
	return permission.Request{
		Operation: permission.OpRunCommand,
		Details:   map[string]any{"command": params.Command},
	}, nil
}

func (t *BashTool) Execute(ctx context.Context, input json.RawMessage, tc *Context) (*Result, error) {
	var params BashInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if strings.TrimSpace(params.Command) == "" {
		return nil, fmt.Errorf("command must not be empty")
	}

	timeout := DefaultCommandTimeout
	if params.Timeout > 0 {
		timeout = time.Duration(params.Timeout) * time.Second
		if timeout > MaxCommandTimeout {
			timeout = MaxCommandTimeout
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.shell, "-c", params.Command)
	cmd.Dir = tc.WorkDir
	out, err := cmd.CombinedOutput()

	output := string(out)
	if len(output) > MaxCommandOutput {
		output = output[:MaxCommandOutput] + "\n... output truncated"
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("command timed out after %s:\n%s", timeout, output)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("command exited with code %d:\n%s", exitErr.ExitCode(), output)
		}
		return nil, fmt.Errorf("failed to run command: %w", err)
	}

	return &Result{
		Title:  fmt.Sprintf("Ran %s", firstWord(params.Command)),
		Output: output,
		Metadata: map[string]any{
			"command": params.Command,
		},
	}, nil
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
