package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openagent-dev/openagent/internal/logging"
	"github.com/openagent-dev/openagent/internal/server"
	"github.com/openagent-dev/openagent/internal/watch"
)

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 7680, "Port for the permission API")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a session with permission decisions taken over HTTP",
	Long: `Runs an interactive session like 'run', but permission requests are
queued and exposed at GET /permissions; a remote client approves or denies
them with POST /permissions/{id}.`,
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

		srvCfg := server.DefaultConfig()
		srvCfg.Port = servePort
		srv := server.New(srvCfg, a.Permissions(), a.Tools())

		go func() {
			if err := srv.Start(); err != nil {
				logging.Error().Err(err).Msg("permission server failed")
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		if w, err := watch.New(dir); err == nil {
			go w.Run(ctx)
		}

		return runInteractive(ctx, a)
	},
}
