package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding of the login and dashboard screens. Which ones
// are active depends on the tab and the attempt stage.
type KeyMap struct {
	Quit key.Binding

	NextTab key.Binding
	PrevTab key.Binding

	Begin  key.Binding
	Stop   key.Binding
	Mic    key.Binding
	Retry  key.Binding
	Backup key.Binding

	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch method"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "switch method"),
		),
		Begin: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start now"),
		),
		Stop: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "done speaking"),
		),
		Mic: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "mic on/off"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "try again"),
		),
		Backup: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "use backup method"),
		),
		NextField: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "sign in"),
		),
	}
}
