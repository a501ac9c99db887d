package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/taskstack/internal/scheduler"
	"github.com/Iron-Ham/taskstack/internal/service"
	"github.com/Iron-Ham/taskstack/internal/tui/styles"
	"github.com/Iron-Ham/taskstack/internal/util"
)

const (
	defaultWidth = 80
	cardPadding  = 8
	dueLayout    = "Mon Jan 2 15:04"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder
	b.WriteString(styles.Header.Width(width - 2).Render("taskstack · now"))
	b.WriteString("\n")

	switch cur := m.Current(); {
	case m.loading && cur == nil:
		b.WriteString(styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	case cur == nil:
		b.WriteString(styles.Secondary.Render(service.NoTasksMessage))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderCurrent(*cur, width))
		b.WriteString("\n")
		if upcoming := m.renderUpcoming(width); upcoming != "" {
			b.WriteString(upcoming)
		}
	}

	if m.adding {
		b.WriteString("\n")
		b.WriteString(styles.Primary.Render("New task: "))
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render("enter to add, esc to cancel"))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.SuccessMsg.Render(m.status))
		b.WriteString("\n")
	}

	if !m.adding {
		b.WriteString(styles.HelpBar.Render(m.help.View(m.keys)))
	}
	return b.String()
}

func (m Model) renderCurrent(r scheduler.Ranked, width int) string {
	inner := max(width-cardPadding, 10)

	var lines []string
	lines = append(lines, styles.SliceTitle.Render(util.Truncate(r.Title, inner)))
	lines = append(lines, "")
	lines = append(lines, styles.Muted.Render("Task: ")+styles.Text.Render(util.Truncate(r.Task.Title, inner-6)))

	meta := []string{
		styles.CategoryBadge(r.Task.Category),
		lipgloss.NewStyle().Foreground(styles.ScoreColor(r.Score)).Render(fmt.Sprintf("score %d", r.Score)),
		styles.Muted.Render(fmt.Sprintf("%d min", r.PlannedMinutes)),
	}
	if r.Task.DueAt != nil {
		meta = append(meta, styles.Warning.Render("due "+r.Task.DueAt.Local().Format(dueLayout)))
	}
	if r.SkipCount > 0 {
		meta = append(meta, styles.Muted.Render(fmt.Sprintf("skipped %d×", r.SkipCount)))
	}
	lines = append(lines, strings.Join(meta, " "))

	if r.Task.Link != "" {
		lines = append(lines, styles.Muted.Render(util.Truncate(r.Task.Link, inner)))
	}

	return styles.SliceCard.Width(width - 4).Render(strings.Join(lines, "\n"))
}

func (m Model) renderUpcoming(width int) string {
	if len(m.queue) < 2 {
		return ""
	}
	rest := m.queue[1:]
	shown := rest[:min(len(rest), upcomingShown)]

	var b strings.Builder
	b.WriteString(styles.Muted.Render(fmt.Sprintf("Up next (%d in queue)", len(rest))))
	b.WriteString("\n")
	for _, r := range shown {
		line := fmt.Sprintf("  %2d  %s", r.Score, r.Title)
		b.WriteString(styles.Text.Render(util.Truncate(line, width-2)))
		b.WriteString("\n")
	}
	return b.String()
}
