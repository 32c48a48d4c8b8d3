package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Back    key.Binding
	Focus   key.Binding
	Check   key.Binding
	Glob    key.Binding
	Cut     key.Binding
	Copy    key.Binding
	Paste   key.Binding
	Cancel  key.Binding
	Delete  key.Binding
	Undo    key.Binding
	Chmod   key.Binding
	MakeDir key.Binding
	Rename  key.Binding
	Refresh key.Binding
	Hidden  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Open:    key.NewBinding(key.WithKeys("enter", "l", "right"), key.WithHelp("enter/l", "open")),
		Back:    key.NewBinding(key.WithKeys("h", "left", "backspace"), key.WithHelp("h/bksp", "parent")),
		Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Check:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "check")),
		Glob:    key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "check by pattern")),
		Cut:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cut")),
		Copy:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Paste:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "paste")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Delete:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Undo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Chmod:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "permissions")),
		MakeDir: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new dir")),
		Rename:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Refresh: key.NewBinding(key.WithKeys("f5"), key.WithHelp("f5", "refresh")),
		Hidden:  key.NewBinding(key.WithKeys("."), key.WithHelp(".", "hidden files")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Check, k.Cut, k.Copy, k.Paste, k.Delete, k.Undo, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back, k.Focus},
		{k.Check, k.Glob, k.Cut, k.Copy, k.Paste, k.Cancel},
		{k.Delete, k.Undo, k.Chmod, k.MakeDir, k.Rename},
		{k.Refresh, k.Hidden, k.Help, k.Quit},
	}
}
