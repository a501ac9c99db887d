package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/taskstack/internal/breakdown"
	"github.com/Iron-Ham/taskstack/internal/importer"
)

func newImportCmd() *cobra.Command {
	var (
		format string
		github bool
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Capture many tasks from a file or GitHub",
		Long: `Capture tasks in bulk. Each task is captured independently; failures
are reported and do not stop the rest.

A text file holds one title per line. Blank lines and lines starting with
# or // are ignored, and list markers ("- ", "* ", "1. ", "TODO:") are
stripped. A YAML file is a list of tasks (or a mapping with a "tasks" key)
with title, category, estimate_minutes, due, importance, notes and link.
Use "-" to read from standard input.

With --github, open issues matching github.query are imported instead.
The token comes from github.token or TASKSTACK_GITHUB_TOKEN.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if github {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				var (
					inputs []breakdown.Input
					err    error
				)
				if github {
					inputs, err = fetchGitHub(cmd, a)
				} else {
					inputs, err = readImportFile(cmd, args[0], format)
				}
				if err != nil {
					return err
				}
				if len(inputs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import.")
					return nil
				}

				res := a.svc.CaptureBatch(cmd.Context(), userFlag(cmd), inputs)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d of %d tasks\n", res.Processed, len(inputs))
				for _, t := range res.Tasks {
					fmt.Fprintf(out, "  + %s (%s, %d slices)\n", t.Title, t.Category, t.SliceCount)
				}
				for _, e := range res.Errors {
					fmt.Fprintf(out, "  ! %s: %s\n", e.Title, e.Error)
				}
				if !res.Success {
					return fmt.Errorf("%d tasks failed to import", len(res.Errors))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "file format: text or yaml (default: from the file extension)")
	cmd.Flags().BoolVar(&github, "github", false, "import open GitHub issues")
	return cmd
}

func readImportFile(cmd *cobra.Command, path, format string) ([]breakdown.Input, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		r = f
		if format == "" {
			format = string(importer.FormatFromPath(path))
		}
	}
	return importer.Parse(importer.Format(format), r)
}

func fetchGitHub(cmd *cobra.Command, a *app) ([]breakdown.Input, error) {
	src, err := importer.NewGitHubSource(a.cfg.GitHub)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Fetching issues matching %q...\n", src.Query())
	return src.Fetch(cmd.Context())
}
