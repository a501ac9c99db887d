package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/taskstack/internal/api"
	"github.com/Iron-Ham/taskstack/internal/logging"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted.

The config file is watched while the server runs; a changed logging.level
takes effect without a restart. Other settings need a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				cfg := a.cfg.Server
				if addr != "" {
					cfg.Addr = addr
				}

				if viper.ConfigFileUsed() != "" {
					viper.OnConfigChange(reloadLogLevel(a.logger))
					viper.WatchConfig()
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s (%s store)\n", cfg.Addr, a.cfg.Store.Backend)
				return api.NewServer(a.svc, a.logger, cfg).Run(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}

// reloadLogLevel applies logging.level from a rewritten config file.
func reloadLogLevel(logger *logging.Logger) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := logging.ParseLevel(viper.GetString("logging.level"))
		if level == logger.Level() {
			return
		}
		logger.SetLevel(level)
		logger.Info("log level changed", "level", level, "file", e.Name)
	}
}
