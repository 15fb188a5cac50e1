package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the board's key bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Tab     key.Binding
	Act     key.Binding
	Bloom   key.Binding
	ChooseA key.Binding
	ChooseB key.Binding
	Reload  key.Binding
	Quit    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "quests/goals"),
		),
		Act: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "claim quest / complete goal"),
		),
		Bloom: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "start bloom"),
		),
		ChooseA: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "story choice A"),
		),
		ChooseB: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "story choice B"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the footer help text.
func (k KeyMap) ShortHelp() string {
	var parts []string
	for _, b := range []key.Binding{k.Up, k.Down, k.Tab, k.Act, k.Bloom, k.Reload, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

