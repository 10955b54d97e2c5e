// Package input routes key events: accelerators first, then focus movement
// and arrow handling, and whatever is left to the focused control.
package input

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the console key bindings
type KeyMap struct {
	New       key.Binding
	Open      key.Binding
	Save      key.Binding
	Quit      key.Binding
	Configure key.Binding
	RunTest   key.Binding
	About     key.Binding
	Cancel    key.Binding
	Next      key.Binding
	Prev      key.Binding
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	Page      key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		New: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("^n", "new"),
		),
		Open: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("^o", "open"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("^s", "save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("^q", "quit"),
		),
		Configure: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("^e", "configure"),
		),
		RunTest: key.NewBinding(
			key.WithKeys("ctrl+r", "f5"),
			key.WithHelp("^r", "run test"),
		),
		About: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "about"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next control"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("⇧tab", "previous control"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "pan/decrease"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "pan/increase"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "pan/increase"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "pan/decrease"),
		),
		Page: key.NewBinding(
			key.WithKeys("ctrl+pgdown", "f6"),
			key.WithHelp("f6", "next page"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.RunTest, k.Configure, k.Next, k.Page, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Open, k.Save, k.Quit},
		{k.Configure, k.RunTest, k.About, k.Cancel},
		{k.Next, k.Prev, k.Page},
		{k.Left, k.Right, k.Up, k.Down},
	}
}
