// Package util holds terminal text helpers shared by the CLI and TUI.
package util

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks truncated text. It is one terminal cell wide.
const Ellipsis = "…"

// Truncate shortens s to at most width terminal cells, ending in an
// ellipsis when anything was cut. Escape sequences and wide runes are
// measured by their displayed width.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return Ellipsis
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// Column truncates s to width cells and pads it with spaces to exactly
// width, for fixed-width table columns.
func Column(s string, width int) string {
	s = Truncate(s, width)
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
