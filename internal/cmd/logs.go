package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/taskstack/internal/config"
	"github.com/Iron-Ham/taskstack/internal/logging"
)

func newLogsCmd() *cobra.Command {
	var (
		filter logging.LogFilter
		since  time.Duration
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the taskstack log",
		Long: `Show entries from taskstack.log and its rotated copies, oldest first.

Examples:
  taskstack logs --level warn
  taskstack logs --task 3f2a... --since 1h
  taskstack logs --user alice --format csv --output alice.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			entries, err := logging.ReadLogs(cfg.Store.ResolveDataDir())
			if err != nil {
				return err
			}

			filter.UserID = userFlag(cmd)
			if since > 0 {
				filter.Since = time.Now().Add(-since)
			}
			entries = logging.FilterLogs(entries, filter)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			if err := logging.ExportLogEntries(w, entries, format); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to %s\n", len(entries), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter.Level, "level", "l", "", "minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&filter.TaskID, "task", "", "only entries for this task id")
	cmd.Flags().StringVar(&filter.SliceID, "slice", "", "only entries for this slice id")
	cmd.Flags().StringVarP(&filter.MessageContains, "grep", "g", "", "only entries whose message contains this text")
	cmd.Flags().DurationVar(&since, "since", 0, "only entries newer than this, e.g. 30m or 24h")
	cmd.Flags().StringVarP(&format, "format", "f", logging.ExportText, "output format: text, json, csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
