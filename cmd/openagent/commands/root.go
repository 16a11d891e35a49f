// Package commands provides the CLI commands for openagent.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/openagent-dev/openagent/internal/config"
	"github.com/openagent-dev/openagent/internal/logging"
)

var (
	// Version is set at build time.
	Version = "0.1.0"
)

// Global flags.
var (
	logLevel string
	workDir  string
	yolo     bool
)

var rootCmd = &cobra.Command{
	Use:   "openagent",
	Short: "openagent - permission-gated coding agent",
	Long: `openagent drives an LLM coding agent whose side-effecting tools
(file writes, deletions, shell commands) pass through an explicit
permission gate.

Run 'openagent run' for an interactive session, or 'openagent serve' to
expose the permission queue over HTTP.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "d", "", "Workspace directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&yolo, "yolo", false, "Skip confirmations except protected operations")

	rootCmd.SetVersionTemplate(fmt.Sprintf("openagent %s\n", Version))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the workspace directory and layered configuration,
// applying global flags on top.
func loadConfig() (*config.Config, string, error) {
	_ = godotenv.Load()

	dir := workDir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, "", err
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, "", err
	}

	if yolo {
		cfg.Permissions.YoloMode = true
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logging.Init(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
	return cfg, dir, nil
}
