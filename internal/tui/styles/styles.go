// Package styles holds the lipgloss palette shared by the terminal screens.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/taskstack/internal/model"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray

	BlueColor   = lipgloss.Color("#60A5FA")
	YellowColor = lipgloss.Color("#FBBF24")
	PinkColor   = lipgloss.Color("#F472B6")
	OrangeColor = lipgloss.Color("#FB923C")

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor).
		MarginBottom(1).
		PaddingLeft(1)

	// SliceCard frames the slice the user should work on now.
	SliceCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 2)

	SliceTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor)

	Badge = lipgloss.NewStyle().
		Padding(0, 1).
		MarginRight(1)

	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	SuccessMsg = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	DropdownItem = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 1)

	DropdownItemSelected = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(PrimaryColor).
				Bold(true).
				Padding(0, 1)
)

// categoryColors gives each catalog category a stable badge color.
var categoryColors = map[model.Category]lipgloss.Color{
	model.CategoryAdmin:     BlueColor,
	model.CategoryTravel:    PinkColor,
	model.CategoryShopping:  YellowColor,
	model.CategoryReading:   PrimaryColor,
	model.CategoryTechnical: SecondaryColor,
	model.CategoryChores:    OrangeColor,
	model.CategoryGeneric:   MutedColor,
}

// CategoryColor returns the badge color for c. Unknown categories are muted.
func CategoryColor(c model.Category) lipgloss.Color {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return MutedColor
}

// CategoryBadge renders c as a colored badge.
func CategoryBadge(c model.Category) string {
	return Badge.
		Foreground(SurfaceColor).
		Background(CategoryColor(c)).
		Render(string(c))
}

// ScoreColor shades a selection score: high scores are urgent.
func ScoreColor(score int) lipgloss.Color {
	switch {
	case score >= 7:
		return ErrorColor
	case score >= 5:
		return WarningColor
	case score >= 3:
		return SecondaryColor
	default:
		return MutedColor
	}
}
