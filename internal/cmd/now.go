package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/taskstack/internal/tui"
)

// isTerminal reports whether stdout is interactive. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Open the interactive now screen",
		Long: `Show the slice to work on now and act on it with single keys:
d done, s skip, z snooze, e or + extend by fifteen minutes, a add a task.

When stdout is not a terminal this prints the same output as "next".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				if !isTerminal() {
					return printNext(cmd, a)
				}
				user := userFlag(cmd)
				if user == "" {
					user = a.svc.Options().DefaultUser
				}
				return tui.Run(cmd.Context(), a.svc, user, a.cfg.Engine.SnoozeMinutes)
			})
		},
	}
}
