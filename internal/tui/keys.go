package tui

import "github.com/charmbracelet/bubbles/key"

// AppKeys are the front-end keys that never reach the console
type AppKeys struct {
	Menu    key.Binding
	Help    key.Binding
	LogUp   key.Binding
	LogDown key.Binding
}

// DefaultAppKeys returns the front-end bindings
func DefaultAppKeys() AppKeys {
	return AppKeys{
		Menu: key.NewBinding(
			key.WithKeys("f10"),
			key.WithHelp("f10", "menu"),
		),
		Help: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "help"),
		),
		LogUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll log up"),
		),
		LogDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll log down"),
		),
	}
}

// DialogKeys drive the configuration dialog, the phantom editor, prompts
// and the menu
type DialogKeys struct {
	Accept    key.Binding
	Cancel    key.Binding
	Edit      key.Binding
	AddRow    key.Binding
	RemoveRow key.Binding
	Select    key.Binding
	Load      key.Binding
	Save      key.Binding
	Next      key.Binding
	Prev      key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
}

// DefaultDialogKeys returns the dialog bindings
func DefaultDialogKeys() DialogKeys {
	return DialogKeys{
		Accept: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("^y", "ok"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit/commit"),
		),
		AddRow: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("^n", "add row"),
		),
		RemoveRow: key.NewBinding(
			key.WithKeys("ctrl+d", "delete"),
			key.WithHelp("^d", "remove row"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		Load: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("^o", "load"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("^s", "save"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "right"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k DialogKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Accept, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k DialogKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Up, k.Down, k.Left, k.Right},
		{k.Edit, k.Select, k.AddRow, k.RemoveRow},
		{k.Load, k.Save, k.Accept, k.Cancel},
	}
}
