package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// root
// ├── a
// │   └── a1 (source, data)
// └── b -> recursion to a
func sampleReport() *model.Report {
	root := model.NewNode("v", "*main.T", model.KindObject)
	a := model.NewNode("a", "*main.A", model.KindObject)
	a.DomID = "k1_a"
	a1 := model.NewNode("a1", "int", model.KindInt)
	a1.Normal = "42"
	a1.Source = "v.a.a1"
	a1.AddData("Constant", "main.Answer")
	a.AddChild(a1)
	b := model.NewNode("b", "*main.A", model.KindRecursion)
	b.RecursionTarget = "k1_a"
	root.AddChild(a, b)

	return &model.Report{Title: "v", Root: root}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func newSizedModel() *Model {
	m := initialModel(sampleReport())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return m
}

func TestRootStartsExpanded(t *testing.T) {
	m := newSizedModel()
	require.Len(t, m.rows, 3)
	assert.Equal(t, "v", m.rows[0].node.Name)
	assert.Equal(t, 1, m.rows[1].depth)
}

func TestToggleAndCollapse(t *testing.T) {
	m := newSizedModel()

	press(m, "down", "enter")
	assert.Len(t, m.rows, 4)
	assert.Equal(t, "a1", m.rows[2].node.Name)

	press(m, "down", "left")
	assert.Equal(t, "a", m.selected().Name, "collapse on a closed node moves to the parent")

	press(m, "left")
	assert.Len(t, m.rows, 3)
}

func TestJumpToRecursionTarget(t *testing.T) {
	m := newSizedModel()

	press(m, "down", "down")
	require.Equal(t, "b", m.selected().Name)

	press(m, "r")
	assert.Equal(t, "a", m.selected().Name)
	assert.True(t, m.expanded[m.selected()] == false)

	press(m, "r")
	assert.Equal(t, "not a recursion", m.status)
}

func TestExpandAll(t *testing.T) {
	m := newSizedModel()
	press(m, "e")
	assert.Len(t, m.rows, 4)
}

func TestCursorStaysInBounds(t *testing.T) {
	m := newSizedModel()
	press(m, "up", "up")
	assert.Equal(t, 0, m.cursor)
	press(m, "f")
	assert.Equal(t, 2, m.cursor)
}

func TestViewShowsSelection(t *testing.T) {
	m := newSizedModel()
	press(m, "e", "down", "down")

	view := m.View()
	assert.Contains(t, view, "= v.a.a1")
	assert.Contains(t, view, "main.Answer")
	assert.Contains(t, view, "Tree")

	press(m, "2")
	assert.Contains(t, m.View(), "Nodes by kind")
}

func TestTabCycles(t *testing.T) {
	m := newSizedModel()
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, StatsTab, m.currentTab)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TreeTab, m.currentTab)
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, StatsTab, m.currentTab)
}

func TestQuit(t *testing.T) {
	m := newSizedModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
