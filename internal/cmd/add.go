package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/taskstack/internal/breakdown"
)

func newAddCmd() *cobra.Command {
	var (
		category   string
		estimate   int
		due        string
		importance int
		notes      string
		link       string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Capture a task and break it into slices",
		Long: `Capture a new task. The task is classified into a category (unless
--category is given) and broken into slices of about fifteen minutes each
following that category's template.

Examples:
  taskstack add "Renew passport" --due 2026-06-01 --importance 5
  taskstack add "Fix login bug" --estimate 60 --link https://example.com/issues/42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dueAt, err := breakdown.ParseDue(due, time.Local)
			if err != nil {
				return err
			}
			in := breakdown.Input{
				Title:           strings.Join(args, " "),
				Category:        category,
				EstimateMinutes: estimate,
				DueAt:           dueAt,
				Importance:      importance,
				UserID:          userFlag(cmd),
				Notes:           notes,
				Link:            link,
			}

			return withApp(func(a *app) error {
				res, err := a.svc.Capture(cmd.Context(), in)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Added %s (%s, %d min) as %s\n", res.Task.Title, res.Task.Category, res.Task.EstimateMinutes, res.Task.ID)
				for i, s := range res.Slices {
					fmt.Fprintf(out, "  %d. %s (%d min)\n", i+1, s.Title, s.PlannedMinutes)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category (default: classified from the title)")
	cmd.Flags().IntVar(&estimate, "estimate", 0, "estimated minutes (default: the category's estimate)")
	cmd.Flags().StringVar(&due, "due", "", "due date, e.g. 2026-06-01 or 2026-06-01 17:00")
	cmd.Flags().IntVar(&importance, "importance", 0, "importance from 1 to 5 (default 3)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&link, "link", "", "related URL")
	return cmd
}
