package util

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{name: "fits", input: "Buy milk", width: 10, want: "Buy milk"},
		{name: "exact", input: "Buy milk", width: 8, want: "Buy milk"},
		{name: "cut", input: "Renew passport", width: 6, want: "Renew…"},
		{name: "one cell", input: "Renew passport", width: 1, want: "…"},
		{name: "zero width", input: "Renew passport", width: 0, want: ""},
		{name: "en dash counts once", input: "Research – Travel", width: 17, want: "Research – Travel"},
		{name: "wide runes", input: "日本旅行の計画", width: 5, want: "日本…"},
		{name: "empty", input: "", width: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.width); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

func TestTruncate_Styled(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("Fix login bug")

	got := Truncate(styled, 7)
	if w := ansi.StringWidth(got); w > 7 {
		t.Errorf("styled result is %d cells wide, want at most 7", w)
	}
	if ansi.Strip(got) != "Fix lo…" {
		t.Errorf("visible text = %q", ansi.Strip(got))
	}

	if Truncate(styled, 20) != styled {
		t.Error("styled text that fits should be returned unchanged")
	}
}

func TestColumn(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"Buy milk", 10, "Buy milk  "},
		{"Renew passport", 6, "Renew…"},
		{"Research – Travel", 18, "Research – Travel "},
		{"", 3, "   "},
	}

	for _, tt := range tests {
		if got := Column(tt.input, tt.width); got != tt.want {
			t.Errorf("Column(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
	}
}
