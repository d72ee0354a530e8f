package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the panel.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	nextTab  key.Binding
	prevTab  key.Binding
	newItem  key.Binding
	rename   key.Binding
	delete   key.Binding
	edit     key.Binding
	mode     key.Binding
	refMode  key.Binding
	generate key.Binding
	refresh  key.Binding
	yes      key.Binding
	no       key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		nextTab:  key.NewBinding(key.WithKeys("tab", "]"), key.WithHelp("tab", "next tab")),
		prevTab:  key.NewBinding(key.WithKeys("shift+tab", "["), key.WithHelp("shift+tab", "prev tab")),
		newItem:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		mode:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "simple/advanced")),
		refMode:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "prompt/audio")),
		generate: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "generate")),
		refresh:  key.NewBinding(key.WithKeys("R", "f5"), key.WithHelp("R", "refresh")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextTab, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.nextTab, k.prevTab, k.refresh},
		{k.newItem, k.rename, k.delete, k.edit},
		{k.mode, k.refMode, k.generate, k.quit},
	}
}
