package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openagent-dev/openagent/internal/agent"
	"github.com/openagent-dev/openagent/internal/config"
	"github.com/openagent-dev/openagent/internal/logging"
	"github.com/openagent-dev/openagent/internal/permission"
	"github.com/openagent-dev/openagent/internal/provider"
	"github.com/openagent-dev/openagent/internal/tool"
	"github.com/openagent-dev/openagent/internal/watch"
)

const defaultSystemPrompt = `You are a coding agent working in the user's workspace.
Use the available tools to read, modify and search files and to run
commands. Prefer small, verifiable steps.`

var runCmd = &cobra.Command{
	Use:   "run [message]",
	Short: "Run an agent session (interactive without arguments)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, dir, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildAgent(ctx, cfg, dir, nil)
		if err != nil {
			return err
		}

		if w, err := watch.New(dir); err == nil {
			go w.Run(ctx)
		} else {
			logging.Warn().Err(err).Msg("workspace watcher disabled")
		}

		if len(args) > 0 {
			return runOnce(ctx, a, strings.Join(args, " "))
		}
		return runInteractive(ctx, a)
	},
}

// buildAgent assembles the adapter, tool registry, permission channel and
// agent from resolved configuration.
func buildAgent(ctx context.Context, cfg *config.Config, dir string, callback permission.Callback) (*agent.Agent, error) {
	adapter, err := provider.New(ctx, cfg.ProviderOptions())
	if err != nil {
		return nil, err
	}

	registry := tool.NewRegistry()
	tool.RegisterBuiltins(registry)

	permOpts := cfg.PermissionOptions()
	permOpts.Callback = callback
	perms := permission.NewChannel(permOpts)

	systemPrompt := cfg.Agent.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	return agent.New(adapter, registry, perms, agent.Options{
		SystemPrompt:    systemPrompt,
		WorkDir:         dir,
		BudgetThreshold: cfg.Agent.BudgetThreshold,
	}), nil
}

func runOnce(ctx context.Context, a *agent.Agent, text string) error {
	res, err := a.Chat(ctx, text)
	if err != nil {
		return err
	}
	if res.Stopped {
		fmt.Println("(round stopped at tool-call budget)")
		return nil
	}
	fmt.Println(res.Text)
	return nil
}

func runInteractive(ctx context.Context, a *agent.Agent) error {
	fmt.Println("openagent interactive session. Type 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		res, err := a.Chat(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if res.Stopped {
			fmt.Println("(round stopped at tool-call budget)")
			continue
		}
		fmt.Println(res.Text)
	}
}
