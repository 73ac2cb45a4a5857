package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/mabhi256/vardig/internal/model"
)

type Model struct {
	// Data
	report *model.Report
	parent map[*model.Node]*model.Node

	// UI State
	currentTab TabType
	width      int
	height     int

	expanded map[*model.Node]bool
	rows     []row
	cursor   int
	offset   int
	status   string

	// Key bindings
	keys KeyMap
	help help.Model
}

type TabType int

const (
	TreeTab TabType = iota
	StatsTab
)

// row is one visible line of the tree tab
type row struct {
	node  *model.Node
	depth int
}

type KeyMap struct {
	Tab1      key.Binding
	Tab2      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Toggle    key.Binding
	Collapse  key.Binding
	Expand    key.Binding
	ExpandAll key.Binding
	Jump      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func k(keys []string, help, desc string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(help, desc),
	)
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:      k([]string{"1"}, "1", "tree"),
		Tab2:      k([]string{"2"}, "2", "stats"),
		NextTab:   k([]string{"tab"}, "tab", "next tab"),
		PrevTab:   k([]string{"shift+tab"}, "shift+tab", "prev tab"),
		Up:        k([]string{"up", "k"}, "↑/k", "up"),
		Down:      k([]string{"down", "j"}, "↓/j", "down"),
		PageUp:    k([]string{"pgup", "b"}, "pgup/b", "page up"),
		PageDown:  k([]string{"pgdown", "f"}, "pgdn/f", "page down"),
		Toggle:    k([]string{"enter", " "}, "enter", "toggle"),
		Collapse:  k([]string{"left", "h"}, "←/h", "collapse"),
		Expand:    k([]string{"right", "l"}, "→/l", "expand"),
		ExpandAll: k([]string{"e"}, "e", "expand all"),
		Jump:      k([]string{"r"}, "r", "jump to original"),
		Help:      k([]string{"?"}, "?", "more keys"),
		Quit:      k([]string{"q", "ctrl+c"}, "q", "quit"),
	}
}

// ShortHelp implements help.KeyMap
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Up, km.Down, km.Toggle, km.Jump, km.Help, km.Quit}
}

// FullHelp implements help.KeyMap
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.Up, km.Down, km.PageUp, km.PageDown},
		{km.Toggle, km.Collapse, km.Expand, km.ExpandAll},
		{km.Jump, km.Tab1, km.Tab2, km.NextTab},
		{km.Help, km.Quit},
	}
}
