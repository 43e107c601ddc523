package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit    key.Binding
	Back    key.Binding
	Enter   key.Binding
	Refresh key.Binding
	Logbook key.Binding
	Up      key.Binding
	Down    key.Binding
}

var Keys = KeyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Logbook: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "logbook")),
	Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "up")),
	Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "down")),
}
