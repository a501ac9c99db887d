package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/taskstack/internal/service"
)

func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the slice to work on now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				return printNext(cmd, a)
			})
		},
	}
}

func printNext(cmd *cobra.Command, a *app) error {
	next, err := a.svc.Next(cmd.Context(), userFlag(cmd))
	if err != nil {
		return err
	}
	if next == nil {
		fmt.Fprintln(cmd.OutOrStdout(), service.NoTasksMessage)
		return nil
	}
	printRanked(cmd.OutOrStdout(), *next)
	return nil
}

func newQueueCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List eligible slices in the order they will be offered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			return withApp(func(a *app) error {
				queue, err := a.svc.Queue(cmd.Context(), userFlag(cmd), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(queue) == 0 {
					fmt.Fprintln(out, service.NoTasksMessage)
					return nil
				}
				for i, r := range queue {
					printQueueLine(out, i, r)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum slices to show (0 for all)")
	return cmd
}
