// Package agent wires the provider adapter, tool registry, permission
// channel and conversation log into the dispatch loop that drives one chat
// round at a time.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openagent-dev/openagent/internal/message"
	"github.com/openagent-dev/openagent/internal/permission"
	"github.com/openagent-dev/openagent/internal/provider"
	"github.com/openagent-dev/openagent/internal/tool"
)

// maxIterations caps model turns within one round as a backstop against
// runaway loops, independent of the tool-call budget.
const maxIterations = 50

// ContinueFunc decides whether a round may keep executing tools after the
// budget threshold is reached.
type ContinueFunc func(ctx context.Context, executed int) (bool, error)

// Options configures an agent instance.
type Options struct {
	// SystemPrompt is sent ahead of the conversation on every completion.
	SystemPrompt string

	// WorkDir is the workspace root tools operate in.
	WorkDir string

	// BudgetThreshold is the tool-call count that triggers a continuation
	// pause. Zero uses the default of 5.
	BudgetThreshold int

	// OnContinue is consulted at a budget pause. When nil, a console prompt
	// is used.
	OnContinue ContinueFunc
}

// Agent owns one conversation and executes chat rounds against a single
// provider adapter.
type Agent struct {
	adapter provider.Adapter
	tools   *tool.Registry
	perms   *permission.Channel
	conv    *message.Conversation
	opts    Options
}

// New creates an agent. The registry may gain tools after construction;
// calls resolve against its state at execution time.
func New(adapter provider.Adapter, tools *tool.Registry, perms *permission.Channel, opts Options) *Agent {
	if opts.OnContinue == nil {
		opts.OnContinue = consoleContinue(os.Stderr)
	}
	return &Agent{
		adapter: adapter,
		tools:   tools,
		perms:   perms,
		conv:    message.NewConversation(),
		opts:    opts,
	}
}

// Conversation returns the agent's turn log.
func (a *Agent) Conversation() *message.Conversation {
	return a.conv
}

// Tools returns the agent's tool registry.
func (a *Agent) Tools() *tool.Registry {
	return a.tools
}

// Permissions returns the agent's permission channel.
func (a *Agent) Permissions() *permission.Channel {
	return a.perms
}

// consoleContinue prompts on w and reads the answer from stdin.
func consoleContinue(w *os.File) ContinueFunc {
	reader := bufio.NewReader(os.Stdin)
	return func(ctx context.Context, executed int) (bool, error) {
		fmt.Fprintf(w, "\n%d tool calls executed this round. Continue? [y/N]: ", executed)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false, nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
