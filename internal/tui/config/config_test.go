package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/taskstack/internal/config"
)

func newTestModel(t *testing.T) (Model, string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	return New(path), path
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "ctrl+u":
			msg = tea.KeyMsg{Type: tea.KeyCtrlU}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func TestCategories_KeysHaveDefaults(t *testing.T) {
	defaults := DefaultValues()
	for _, cat := range Categories() {
		if len(cat.Items) == 0 {
			t.Errorf("category %s has no items", cat.Name)
		}
		for _, item := range cat.Items {
			if _, ok := defaults[item.Key]; !ok {
				t.Errorf("%s has no default", item.Key)
			}
			if item.Type == TypeSelect && len(item.Options) == 0 {
				t.Errorf("%s is a select without options", item.Key)
			}
		}
	}
}

func TestNavigation_Wraps(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, "k")
	last := len(m.categories) - 1
	if m.categoryIndex != last || m.itemIndex != len(m.categories[last].Items)-1 {
		t.Errorf("up from the first item = (%d,%d), want last item", m.categoryIndex, m.itemIndex)
	}

	m = press(m, "j")
	if m.categoryIndex != 0 || m.itemIndex != 0 {
		t.Errorf("down from the last item = (%d,%d), want (0,0)", m.categoryIndex, m.itemIndex)
	}

	m = press(m, "tab")
	if m.categoryIndex != 1 || m.currentItem().Key != "engine.default_user" {
		t.Errorf("tab should jump to Engine, got %s", m.currentItem().Key)
	}
}

func TestSelect_SavesChoice(t *testing.T) {
	m, path := newTestModel(t)

	// store.backend: file -> sqlite
	m = press(m, "enter")
	if !m.editing {
		t.Fatal("enter should open the select")
	}
	if got := m.currentItem().Options[m.selectIndex]; got != "file" {
		t.Fatalf("select should start on the current value, got %s", got)
	}
	m = press(m, "j", "enter")

	if got := viper.GetString("store.backend"); got != "sqlite" {
		t.Errorf("store.backend = %q, want sqlite", got)
	}
	if !m.Modified() {
		t.Error("Modified() should report the save")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "sqlite") {
		t.Errorf("config file missing the new backend:\n%s", data)
	}
}

func TestInt_Validation(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "tab", "j") // engine.snooze_minutes
	if m.currentItem().Key != "engine.snooze_minutes" {
		t.Fatalf("on %s", m.currentItem().Key)
	}

	m = press(m, "enter", "ctrl+u")
	m = typeText(m, "abc")
	m = press(m, "enter")
	if m.errorMsg != "expected integer value" || !m.editing {
		t.Errorf("non-integer should be rejected, err=%q editing=%v", m.errorMsg, m.editing)
	}

	m = press(m, "ctrl+u")
	m = typeText(m, "99999")
	m = press(m, "enter")
	if !strings.Contains(m.errorMsg, "at most") {
		t.Errorf("over-limit value should be rejected, err=%q", m.errorMsg)
	}

	m = press(m, "ctrl+u")
	m = typeText(m, "45")
	m = press(m, "enter")
	if m.editing || m.errorMsg != "" {
		t.Fatalf("valid value should save, err=%q", m.errorMsg)
	}
	if got := viper.GetInt("engine.snooze_minutes"); got != 45 {
		t.Errorf("engine.snooze_minutes = %d, want 45", got)
	}
}

func TestBool_Toggles(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "tab", "j", "j") // engine.strict_categories

	m = press(m, "enter")
	if !viper.GetBool("engine.strict_categories") {
		t.Error("enter should toggle strict categories on")
	}
	if m.editing {
		t.Error("bools toggle in place")
	}
}

func TestEditCancel(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "tab") // engine.default_user

	m = press(m, "enter", "ctrl+u")
	m = typeText(m, "alice")
	m = press(m, "esc")

	if m.editing {
		t.Error("esc should close the editor")
	}
	if got := viper.GetString("engine.default_user"); got != "demo" {
		t.Errorf("cancelled edit changed the value to %q", got)
	}
	if m.Modified() {
		t.Error("nothing should be saved")
	}
}

func TestResetToDefault(t *testing.T) {
	m, _ := newTestModel(t)
	viper.Set("engine.default_user", "alice")

	m = press(m, "tab", "r")

	if got := viper.GetString("engine.default_user"); got != "demo" {
		t.Errorf("engine.default_user = %q, want demo", got)
	}
	if !strings.Contains(m.infoMsg, "Reset Default User") {
		t.Errorf("infoMsg = %q", m.infoMsg)
	}
}

func TestView(t *testing.T) {
	m, path := newTestModel(t)
	view := m.View()
	for _, want := range []string{"taskstack configuration", path, "[ Storage ]", "[ GitHub ]", "Backend", "(default)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = press(m, "q")
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}
