package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/taskstack/internal/lifecycle"
)

// newActionCmds returns one command per slice action.
func newActionCmds() []*cobra.Command {
	done := actionCmd(lifecycle.ActionDone, "done <slice-id>", "Mark a slice as done")
	skip := actionCmd(lifecycle.ActionSkip, "skip <slice-id>", "Skip a slice for now (lowers its score)")
	snooze := actionCmd(lifecycle.ActionSnooze, "snooze <slice-id>", "Hide a slice for a while")
	snooze.Flags().IntP("minutes", "m", 0, "snooze duration in minutes (default: engine.snooze_minutes)")
	extend := actionCmd(lifecycle.ActionExtend, "extend <slice-id>", "Finish a slice and queue a 15 minute continuation right after it")

	return []*cobra.Command{done, skip, snooze, extend}
}

func actionCmd(action lifecycle.Action, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := lifecycle.Request{SliceID: args[0], Action: action}
			if f := cmd.Flags().Lookup("minutes"); f != nil {
				req.SnoozeMinutes, _ = cmd.Flags().GetInt("minutes")
				if req.SnoozeMinutes < 0 {
					return fmt.Errorf("--minutes must not be negative")
				}
			}

			return withApp(func(a *app) error {
				res, err := a.svc.Act(cmd.Context(), userFlag(cmd), req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, res.Message)
				if res.Continuation != nil {
					fmt.Fprintf(out, "Continuation: %s\n", res.Continuation.ID)
				}
				return nil
			})
		},
	}
}
