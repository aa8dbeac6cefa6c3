package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap satisfies help.KeyMap.
type keyMap struct {
	Refresh key.Binding
	Today   key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Today, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh, k.Today}, {k.Quit}}
}

var keys = keyMap{
	Refresh: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "load date"),
	),
	Today: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "today"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
}
