package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the now-screen bindings. It implements help.KeyMap.
type keyMap struct {
	Done    key.Binding
	Skip    key.Binding
	Snooze  key.Binding
	Extend  key.Binding
	Add     key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Done: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "done"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Snooze: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "snooze"),
		),
		Extend: key.NewBinding(
			key.WithKeys("e", "+"),
			key.WithHelp("e/+", "+15 min"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add task"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the collapsed help bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Done, k.Skip, k.Snooze, k.Extend, k.Help, k.Quit}
}

// FullHelp returns the bindings shown when help is expanded.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Done, k.Skip, k.Snooze, k.Extend},
		{k.Add, k.Refresh, k.Help, k.Quit},
	}
}

// setActionsEnabled toggles the slice actions, which only apply while a
// slice is on screen.
func (k *keyMap) setActionsEnabled(on bool) {
	k.Done.SetEnabled(on)
	k.Skip.SetEnabled(on)
	k.Snooze.SetEnabled(on)
	k.Extend.SetEnabled(on)
}
