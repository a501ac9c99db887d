package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Iron-Ham/taskstack/internal/model"
	"github.com/Iron-Ham/taskstack/internal/scheduler"
	"github.com/Iron-Ham/taskstack/internal/service"
	"github.com/Iron-Ham/taskstack/internal/util"
)

const (
	dueLayout   = "Mon Jan 2 15:04"
	titleColumn = 50
)

func formatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(dueLayout)
}

// printRanked writes one slice with its task context.
func printRanked(w io.Writer, r scheduler.Ranked) {
	fmt.Fprintf(w, "%s\n", r.Title)
	fmt.Fprintf(w, "  Task:     %s (%s)\n", r.Task.Title, r.Task.Category)
	fmt.Fprintf(w, "  Slice:    %s\n", r.ID)
	fmt.Fprintf(w, "  Score:    %d\n", r.Score)
	fmt.Fprintf(w, "  Planned:  %d min\n", r.PlannedMinutes)
	if r.Task.DueAt != nil {
		fmt.Fprintf(w, "  Due:      %s\n", formatDue(r.Task.DueAt))
	}
	if r.SkipCount > 0 {
		fmt.Fprintf(w, "  Skipped:  %d\n", r.SkipCount)
	}
	if r.Task.Link != "" {
		fmt.Fprintf(w, "  Link:     %s\n", r.Task.Link)
	}
}

// printQueueLine writes a slice as a single row.
func printQueueLine(w io.Writer, i int, r scheduler.Ranked) {
	fmt.Fprintf(w, "%3d. [%2d] %s %3d min  %s\n", i+1, r.Score, util.Column(r.Title, titleColumn), r.PlannedMinutes, r.ID)
}

// printTask writes a task and its remaining slices.
func printTask(w io.Writer, v service.TaskView) {
	meta := []string{string(v.Category), fmt.Sprintf("importance %d", v.EffectiveImportance()), fmt.Sprintf("%d min", v.EstimateMinutes)}
	if v.DueAt != nil {
		meta = append(meta, "due "+formatDue(v.DueAt))
	}
	fmt.Fprintf(w, "%s  %s\n", v.ID, v.Title)
	fmt.Fprintf(w, "    %s\n", strings.Join(meta, " · "))
	for _, s := range v.Slices {
		fmt.Fprintf(w, "    - %s %3d min  %s\n", util.Column(s.Title, titleColumn), s.PlannedMinutes, s.ID)
	}
}

// printTaskSummary writes a task without slices.
func printTaskSummary(w io.Writer, t model.Task) {
	fmt.Fprintf(w, "%s  %s (%s)\n", t.ID, t.Title, t.Category)
}
