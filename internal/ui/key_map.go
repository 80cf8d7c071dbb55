package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	play    key.Binding
	toggle  key.Binding
	next    key.Binding
	prev    key.Binding
	forward key.Binding
	back    key.Binding
	louder  key.Binding
	quieter key.Binding
	mute    key.Binding
	theme   key.Binding
	reload  key.Binding
	login   key.Binding
	help    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		play:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		toggle:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pause")),
		next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		forward: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "seek +5s")),
		back:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "seek -5s")),
		louder:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		quieter: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		mute:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		login:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "login")),
		help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.play, k.toggle, k.next, k.prev, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.play, k.toggle},
		{k.next, k.prev, k.forward, k.back},
		{k.louder, k.quieter, k.mute, k.theme},
		{k.reload, k.login, k.help, k.quit},
	}
}
