// Package config is the interactive editor behind `taskstack config edit`.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/taskstack/internal/config"
	"github.com/Iron-Ham/taskstack/internal/tui/styles"
)

// Item types
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeBool   = "bool"
	TypeSelect = "select"
)

// ConfigItem represents a single configuration item
type ConfigItem struct {
	Key         string
	Label       string
	Description string
	Type        string
	Options     []string // For select type
	Min, Max    int      // For int type; Max 0 means unbounded
}

// Category represents a group of config items
type Category struct {
	Name  string
	Items []ConfigItem
}

// Categories returns the editable settings grouped for display.
func Categories() []Category {
	return []Category{
		{
			Name: "Storage",
			Items: []ConfigItem{
				{
					Key:         "store.backend",
					Label:       "Backend",
					Description: "Where tasks and slices are kept",
					Type:        TypeSelect,
					Options:     config.ValidBackends(),
				},
				{
					Key:         "store.data_dir",
					Label:       "Data Directory",
					Description: "State file, default database and log location (empty uses the XDG data dir)",
					Type:        TypeString,
				},
				{
					Key:         "store.sqlite_path",
					Label:       "SQLite Path",
					Description: "Database file for the sqlite backend (empty uses <data dir>/taskstack.db)",
					Type:        TypeString,
				},
			},
		},
		{
			Name: "Engine",
			Items: []ConfigItem{
				{
					Key:         "engine.default_user",
					Label:       "Default User",
					Description: "User that owns tasks captured without one",
					Type:        TypeString,
				},
				{
					Key:         "engine.snooze_minutes",
					Label:       "Snooze Minutes",
					Description: "How long a snooze lasts when no duration is given",
					Type:        TypeInt,
					Min:         1,
					Max:         config.MaxSnoozeMinutes,
				},
				{
					Key:         "engine.strict_categories",
					Label:       "Strict Categories",
					Description: "Reject explicit categories that are not in the template catalog",
					Type:        TypeBool,
				},
			},
		},
		{
			Name: "Server",
			Items: []ConfigItem{
				{
					Key:         "server.addr",
					Label:       "Listen Address",
					Description: "host:port for taskstack serve",
					Type:        TypeString,
				},
				{
					Key:         "server.mode",
					Label:       "Mode",
					Description: "gin mode for the HTTP API",
					Type:        TypeSelect,
					Options:     config.ValidServerModes(),
				},
				{
					Key:         "server.shutdown_timeout_seconds",
					Label:       "Shutdown Timeout (s)",
					Description: "Grace period for in-flight requests on shutdown",
					Type:        TypeInt,
				},
			},
		},
		{
			Name: "Logging",
			Items: []ConfigItem{
				{
					Key:         "logging.enabled",
					Label:       "Enabled",
					Description: "Write a JSON log file to the data directory",
					Type:        TypeBool,
				},
				{
					Key:         "logging.level",
					Label:       "Level",
					Description: "Minimum level written to the log",
					Type:        TypeSelect,
					Options:     config.ValidLogLevels(),
				},
				{
					Key:         "logging.max_size_mb",
					Label:       "Max Size (MB)",
					Description: "Rotate the log file at this size (0 disables rotation)",
					Type:        TypeInt,
				},
				{
					Key:         "logging.max_backups",
					Label:       "Max Backups",
					Description: "Rotated log files to keep",
					Type:        TypeInt,
				},
			},
		},
		{
			Name: "GitHub",
			Items: []ConfigItem{
				{
					Key:         "github.query",
					Label:       "Issue Query",
					Description: "Search query for taskstack import --github (empty: open issues assigned to you)",
					Type:        TypeString,
				},
			},
		},
	}
}

// Model is the Bubbletea model for the interactive config UI
type Model struct {
	categories     []Category
	categoryIndex  int
	itemIndex      int
	width          int
	height         int
	editing        bool
	textInput      textinput.Model
	selectIndex    int
	errorMsg       string
	infoMsg        string
	quitting       bool
	configModified bool
	// configFile is where changes are written.
	configFile string
}

// New creates a config model that saves to configFile. An empty path
// saves to config.ConfigFile().
func New(configFile string) Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 40

	if configFile == "" {
		configFile = config.ConfigFile()
	}
	return Model{
		categories: Categories(),
		textInput:  ti,
		configFile: configFile,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.errorMsg = ""
		m.infoMsg = ""

		if m.editing {
			return m.handleEditingKeypress(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			m.itemIndex--
			if m.itemIndex < 0 {
				m.categoryIndex = wrap(m.categoryIndex-1, len(m.categories))
				m.itemIndex = len(m.categories[m.categoryIndex].Items) - 1
			}

		case "down", "j":
			m.itemIndex++
			if m.itemIndex >= len(m.categories[m.categoryIndex].Items) {
				m.categoryIndex = wrap(m.categoryIndex+1, len(m.categories))
				m.itemIndex = 0
			}

		case "tab":
			m.categoryIndex = wrap(m.categoryIndex+1, len(m.categories))
			m.itemIndex = 0

		case "shift+tab":
			m.categoryIndex = wrap(m.categoryIndex-1, len(m.categories))
			m.itemIndex = 0

		case "enter", " ":
			item := m.currentItem()
			switch item.Type {
			case TypeBool:
				viper.Set(item.Key, !viper.GetBool(item.Key))
				m.saveConfig()
			case TypeSelect:
				m.editing = true
				m.selectIndex = m.currentSelectIndex()
			default:
				m.editing = true
				m.textInput.SetValue(m.displayValue(item))
				m.textInput.CursorEnd()
				m.textInput.Focus()
			}

		case "r":
			m.resetCurrentToDefault()
		}
	}

	return m, nil
}

func (m Model) handleEditingKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := m.currentItem()

	switch msg.String() {
	case "esc":
		m.editing = false
		m.textInput.SetValue("")
		return m, nil

	case "enter":
		if item.Type == TypeSelect {
			viper.Set(item.Key, item.Options[m.selectIndex])
		} else if err := validateAndSet(item, m.textInput.Value()); err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.saveConfig()
		m.editing = false
		m.textInput.SetValue("")
		return m, nil

	case "up", "k":
		if item.Type == TypeSelect {
			m.selectIndex = wrap(m.selectIndex-1, len(item.Options))
			return m, nil
		}

	case "down", "j":
		if item.Type == TypeSelect {
			m.selectIndex = wrap(m.selectIndex+1, len(item.Options))
			return m, nil
		}
	}

	if item.Type != TypeSelect {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width == 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(styles.Header.Width(width - 4).Render("taskstack configuration"))
	b.WriteString("\n\n")
	b.WriteString(styles.Muted.Render("Config file: " + m.configFile))
	b.WriteString("\n\n")

	for ci, cat := range m.categories {
		active := ci == m.categoryIndex

		catStyle := styles.Muted.Bold(true)
		if active {
			catStyle = styles.Primary.Bold(true)
		}
		b.WriteString(catStyle.Render(fmt.Sprintf("[ %s ]", cat.Name)))
		b.WriteString("\n")

		for ii, item := range cat.Items {
			b.WriteString(m.renderItem(item, active && ii == m.itemIndex))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString(m.renderEditOverlay())
	} else {
		b.WriteString(styles.Muted.Render(m.currentItem().Description))
		b.WriteString("\n")
	}

	if m.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render("Error: " + m.errorMsg))
	}
	if m.infoMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.SuccessMsg.Render(m.infoMsg))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderItem(item ConfigItem, selected bool) string {
	value := m.displayValue(item)
	if value == "" {
		value = "(default)"
	}
	label := fmt.Sprintf("%-24s", item.Label)

	if selected {
		return fmt.Sprintf("  %s %s  %s",
			styles.Secondary.Render(">"),
			styles.Text.Bold(true).Render(label),
			styles.Primary.Render(value))
	}
	return fmt.Sprintf("    %s  %s", styles.Muted.Render(label), styles.Text.Render(value))
}

func (m Model) renderEditOverlay() string {
	item := m.currentItem()

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.PrimaryColor).
		Padding(1, 2).
		Width(50)

	var content strings.Builder
	if item.Type == TypeSelect {
		fmt.Fprintf(&content, "Select %s:\n\n", item.Label)
		for i, opt := range item.Options {
			if i == m.selectIndex {
				content.WriteString(styles.DropdownItemSelected.Render(" > " + opt + " "))
			} else {
				content.WriteString(styles.DropdownItem.Render("   " + opt + " "))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n" + styles.Muted.Render("j/k to select, enter to confirm, esc to cancel"))
	} else {
		fmt.Fprintf(&content, "Edit %s:\n\n", item.Label)
		content.WriteString(m.textInput.View())
		content.WriteString("\n\n" + styles.Muted.Render("enter to save, esc to cancel"))
	}

	return "\n" + box.Render(content.String())
}

func (m Model) renderHelp() string {
	key := styles.HelpKey
	if m.editing {
		return styles.HelpBar.Render(key.Render("enter") + " save  " + key.Render("esc") + " cancel")
	}
	return styles.HelpBar.Render(
		key.Render("j/k") + " navigate  " +
			key.Render("tab") + " next section  " +
			key.Render("enter") + " edit  " +
			key.Render("r") + " reset  " +
			key.Render("q") + " quit",
	)
}

func (m Model) currentItem() ConfigItem {
	return m.categories[m.categoryIndex].Items[m.itemIndex]
}

func (m Model) displayValue(item ConfigItem) string {
	switch item.Type {
	case TypeBool:
		return strconv.FormatBool(viper.GetBool(item.Key))
	case TypeInt:
		return strconv.Itoa(viper.GetInt(item.Key))
	default:
		return viper.GetString(item.Key)
	}
}

func (m Model) currentSelectIndex() int {
	item := m.currentItem()
	if i := slices.Index(item.Options, viper.GetString(item.Key)); i >= 0 {
		return i
	}
	return 0
}

func validateAndSet(item ConfigItem, value string) error {
	value = strings.TrimSpace(value)
	switch item.Type {
	case TypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("expected integer value")
		}
		if n < item.Min {
			return fmt.Errorf("value must be at least %d", item.Min)
		}
		if item.Max > 0 && n > item.Max {
			return fmt.Errorf("value must be at most %d", item.Max)
		}
		viper.Set(item.Key, n)
	case TypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true or false")
		}
		viper.Set(item.Key, b)
	case TypeSelect:
		if !slices.Contains(item.Options, value) {
			return fmt.Errorf("invalid option: %s", value)
		}
		viper.Set(item.Key, value)
	default:
		if item.Key == "engine.default_user" && value == "" {
			return fmt.Errorf("default user must not be empty")
		}
		viper.Set(item.Key, value)
	}
	return nil
}

func (m *Model) saveConfig() {
	if err := os.MkdirAll(filepath.Dir(m.configFile), 0755); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to create config directory: %v", err)
		return
	}
	if err := viper.WriteConfigAs(m.configFile); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to save config: %v", err)
		return
	}
	m.infoMsg = "Saved!"
	m.configModified = true
}

// DefaultValues maps every configuration key to its default.
func DefaultValues() map[string]any {
	d := config.Default()
	return map[string]any{
		"store.backend":                   d.Store.Backend,
		"store.data_dir":                  d.Store.DataDir,
		"store.sqlite_path":               d.Store.SQLitePath,
		"engine.default_user":             d.Engine.DefaultUser,
		"engine.snooze_minutes":           d.Engine.SnoozeMinutes,
		"engine.strict_categories":        d.Engine.StrictCategories,
		"server.addr":                     d.Server.Addr,
		"server.mode":                     d.Server.Mode,
		"server.shutdown_timeout_seconds": d.Server.ShutdownTimeoutSeconds,
		"logging.enabled":                 d.Logging.Enabled,
		"logging.level":                   d.Logging.Level,
		"logging.max_size_mb":             d.Logging.MaxSizeMB,
		"logging.max_backups":             d.Logging.MaxBackups,
		"github.token":                    d.GitHub.Token,
		"github.query":                    d.GitHub.Query,
	}
}

func (m *Model) resetCurrentToDefault() {
	item := m.currentItem()
	if v, ok := DefaultValues()[item.Key]; ok {
		viper.Set(item.Key, v)
		m.saveConfig()
		if m.errorMsg == "" {
			m.infoMsg = fmt.Sprintf("Reset %s to default", item.Label)
		}
	}
}

// Modified reports whether any change was saved.
func (m Model) Modified() bool {
	return m.configModified
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

// Run starts the interactive config UI
func Run(configFile string) error {
	p := tea.NewProgram(New(configFile), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
