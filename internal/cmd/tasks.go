package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/taskstack/internal/breakdown"
	"github.com/Iron-Ham/taskstack/internal/errors"
	"github.com/Iron-Ham/taskstack/internal/model"
	"github.com/Iron-Ham/taskstack/internal/service"
)

// titleMatcher compiles a case-insensitive glob over task titles. An
// empty pattern matches everything.
func titleMatcher(pattern string) (func(string) bool, error) {
	if pattern == "" {
		return func(string) bool { return true }, nil
	}
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, errors.NewValidationError("invalid --match pattern").
			WithField("match").WithValue(pattern).WithCause(err)
	}
	return func(title string) bool { return g.Match(strings.ToLower(title)) }, nil
}

func newTasksCmd() *cobra.Command {
	var (
		match string
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks with their remaining slices",
		Long: `List tasks that still have slices to do, newest first.

--match filters titles with a case-insensitive glob, e.g. --match "*passport*".
--all also lists tasks whose slices are all finished.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := titleMatcher(match)
			if err != nil {
				return err
			}

			return withApp(func(a *app) error {
				out := cmd.OutOrStdout()

				if all {
					tasks, err := a.svc.AllTasks(cmd.Context(), userFlag(cmd))
					if err != nil {
						return err
					}
					for _, t := range tasks {
						if matches(t.Title) {
							printTaskSummary(out, t)
						}
					}
					return nil
				}

				views, err := a.svc.Tasks(cmd.Context(), userFlag(cmd))
				if err != nil {
					return err
				}
				shown := 0
				for _, v := range views {
					if !matches(v.Title) {
						continue
					}
					printTask(out, v)
					shown++
				}
				if shown == 0 {
					fmt.Fprintln(out, "No tasks.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&match, "match", "m", "", "glob over task titles")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include tasks with no slices left")
	return cmd
}

func newEditCmd() *cobra.Command {
	var (
		title      string
		category   string
		importance int
		estimate   int
		due        string
		notes      string
		link       string
	)

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change a task's details",
		Long: `Change a task's details. Only the flags given are changed.
Pass --due "" to clear the due date and --category "" to re-classify from
the title. Slices are not regenerated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			return withApp(func(a *app) error {
				task, err := findTask(cmd, a, args[0])
				if err != nil {
					return err
				}

				edit := service.TaskEdit{Title: task.Title, DueAt: task.DueAt}
				if flags.Changed("title") {
					edit.Title = title
				}
				if flags.Changed("category") {
					edit.Category = &category
				}
				if flags.Changed("importance") {
					edit.Importance = &importance
				}
				if flags.Changed("estimate") {
					edit.EstimateMinutes = &estimate
				}
				if flags.Changed("due") {
					edit.DueAt, err = breakdown.ParseDue(due, time.Local)
					if err != nil {
						return err
					}
				}
				if flags.Changed("notes") {
					edit.Notes = &notes
				}
				if flags.Changed("link") {
					edit.Link = &link
				}

				updated, err := a.svc.UpdateTask(cmd.Context(), task.ID, edit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s (%s)\n", updated.ID, updated.Title, updated.Category)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().IntVar(&importance, "importance", 0, "importance from 1 to 5")
	cmd.Flags().IntVar(&estimate, "estimate", 0, "estimated minutes")
	cmd.Flags().StringVar(&due, "due", "", "due date, or empty to clear")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().StringVar(&link, "link", "", "related URL")
	return cmd
}

// findTask looks a task up by id across every user.
func findTask(cmd *cobra.Command, a *app, id string) (model.Task, error) {
	tasks, err := a.svc.AllTasks(cmd.Context(), "")
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, errors.TaskNotFound(id)
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task and all of its slices",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				if err := a.svc.DeleteTask(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
				return nil
			})
		},
	}
}

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List categories with their stages and default estimates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, t := range breakdown.Catalog() {
				fmt.Fprintf(out, "%s (%d min)\n", t.Category, t.DefaultEstimate)
				for i, stage := range t.Stages {
					fmt.Fprintf(out, "  %d. %s\n", i+1, stage)
				}
			}
			return nil
		},
	}
}
