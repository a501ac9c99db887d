// Package cmd wires the taskstack command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/taskstack/internal/config"
	configcmd "github.com/Iron-Ham/taskstack/internal/cmd/config"
	"github.com/Iron-Ham/taskstack/internal/logging"
	"github.com/Iron-Ham/taskstack/internal/scheduler"
	"github.com/Iron-Ham/taskstack/internal/service"
	"github.com/Iron-Ham/taskstack/internal/store"
)

// NewRootCmd builds the taskstack command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskstack",
		Short: "Break tasks into small slices and always know what to do next",
		Long: `taskstack captures tasks, breaks each one into short focused slices
using a per-category template, and picks the single slice you should work
on right now based on importance, urgency and how often it was skipped.

Slices are finished, skipped, snoozed or extended by fifteen minutes
from the command line, the interactive "now" screen, or the HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Init(viper.GetString("config"))
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/taskstack/config.yaml)")
	root.PersistentFlags().StringP("user", "u", "", "user id (default is engine.default_user)")
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(
		newAddCmd(),
		newImportCmd(),
		newNextCmd(),
		newQueueCmd(),
		newTasksCmd(),
		newEditCmd(),
		newDeleteCmd(),
		newTemplatesCmd(),
		newServeCmd(),
		newNowCmd(),
		newLogsCmd(),
	)
	for _, c := range newActionCmds() {
		root.AddCommand(c)
	}
	configcmd.Register(root)

	return root
}

// Execute runs the root command
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// app is the loaded configuration and the objects built from it.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	store  store.Store
	svc    *service.Service
}

// openApp loads and validates configuration, then opens the configured
// store. Callers must Close the result.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		logger, err = logging.NewLogger(cfg.Store.ResolveDataDir(), cfg.Logging.Level, logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
			logger = logging.NopLogger()
		}
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	logger.Debug("store opened", "backend", cfg.Store.Backend)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  st,
		svc:    service.New(st, scheduler.SystemClock{}, logger, service.OptionsFromConfig(cfg.Engine)),
	}, nil
}

func (a *app) Close() error {
	err := a.store.Close()
	if lerr := a.logger.Close(); err == nil {
		err = lerr
	}
	return err
}

// withApp runs fn against a freshly opened app.
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}

// userFlag returns the --user value, empty when not given.
func userFlag(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	return u
}
