package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Navigation
	Editor   key.Binding
	Preview  key.Binding
	History  key.Binding
	Settings key.Binding

	// Actions
	Select   key.Binding
	New      key.Binding
	Add      key.Binding
	Delete   key.Binding
	Save     key.Binding
	Generate key.Binding

	// Export
	ExportPDF   key.Binding
	ExportImage key.Binding
	ExportHTML  key.Binding
	ExportAll   key.Binding

	// Movement
	Up   key.Binding
	Down key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:        key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Editor:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "editor")),
	Preview:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "preview")),
	History:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "saved invoices")),
	Settings:    key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	Select:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	New:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new invoice")),
	Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add item")),
	Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Generate:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),
	ExportPDF:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pdf")),
	ExportImage: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "image")),
	ExportHTML:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "html")),
	ExportAll:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export all")),
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
}
