package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap binds mixer intents to keys.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Dec       key.Binding
	Inc       key.Binding
	DecCoarse key.Binding
	IncCoarse key.Binding
	Toggle    key.Binding
	Edit      key.Binding
	Commit    key.Binding
	Cancel    key.Binding
	Reset     key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next"),
		),
		Dec: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "less"),
		),
		Inc: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "more"),
		),
		DecCoarse: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("H", "much less"),
		),
		IncCoarse: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("L", "much more"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "t"),
			key.WithHelp("space", "on/off"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter", "type value"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Dec, k.Inc, k.Toggle, k.Edit, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.Dec, k.Inc, k.DecCoarse, k.IncCoarse},
		{k.Edit, k.Reset, k.Quit},
	}
}

// editHelp is shown while the value field has focus.
func (k KeyMap) editHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Cancel}
}
