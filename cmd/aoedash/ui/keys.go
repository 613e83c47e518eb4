package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextPage key.Binding
	PrevPage key.Binding
	NextView key.Binding
	Left     key.Binding
	Right    key.Binding
	Open     key.Binding
	Toggle   key.Binding
	Close    key.Binding
	Reset    key.Binding
	Reload   key.Binding
	Copy     key.Binding
	Export   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.Open, k.NextView, k.Reset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPage, k.PrevPage, k.NextView},
		{k.Left, k.Right, k.Open, k.Toggle, k.Close},
		{k.Reset, k.Reload, k.Copy, k.Export},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	NextPage: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),
	PrevPage: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev page")),
	NextView: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "data/chart/info/backend")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev filter")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next filter")),
	Open:     key.NewBinding(key.WithKeys("enter", "f"), key.WithHelp("enter", "edit filter")),
	Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle option")),
	Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close picker")),
	Reset:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset filters")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload data")),
	Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy csv")),
	Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export chart")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
