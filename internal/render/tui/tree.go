package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/utils"
)

// rebuildRows flattens the expanded part of the tree into visible rows
func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]
	if m.report == nil || m.report.Root == nil {
		return
	}

	var visit func(n *model.Node, depth int)
	visit = func(n *model.Node, depth int) {
		m.rows = append(m.rows, row{node: n, depth: depth})
		if !m.expanded[n] {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(m.report.Root, 0)

	m.cursor = min(m.cursor, len(m.rows)-1)
}

func (m *Model) selected() *model.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

func (m *Model) toggle() {
	n := m.selected()
	if n == nil || !n.HasChildren() {
		return
	}
	m.expanded[n] = !m.expanded[n]
	m.rebuildRows()
}

// collapse closes the selected node, or moves to its parent when it is closed
func (m *Model) collapse() {
	n := m.selected()
	if n == nil {
		return
	}
	if m.expanded[n] {
		m.expanded[n] = false
		m.rebuildRows()
		return
	}
	if p := m.parent[n]; p != nil {
		m.moveTo(p)
	}
}

func (m *Model) expand() {
	n := m.selected()
	if n == nil || !n.HasChildren() || m.expanded[n] {
		return
	}
	m.expanded[n] = true
	m.rebuildRows()
}

func (m *Model) expandAll() {
	n := m.selected()
	if n == nil {
		return
	}
	n.Walk(func(node *model.Node, _ int) bool {
		if node.HasChildren() {
			m.expanded[node] = true
		}
		return true
	})
	m.rebuildRows()
}

// jump moves the cursor from a recursion node to the node it points at
func (m *Model) jump() {
	n := m.selected()
	if n == nil || !n.IsRecursion() {
		m.status = "not a recursion"
		return
	}

	var target *model.Node
	m.report.Root.Walk(func(node *model.Node, _ int) bool {
		if target != nil {
			return false
		}
		if node.DomID == n.RecursionTarget && !node.IsRecursion() {
			target = node
			return false
		}
		return true
	})
	if target == nil {
		m.status = "original not found"
		return
	}
	m.moveTo(target)
	m.status = ""
}

// moveTo expands every ancestor of n and places the cursor on it
func (m *Model) moveTo(n *model.Node) {
	for p := m.parent[n]; p != nil; p = m.parent[p] {
		m.expanded[p] = true
	}
	m.rebuildRows()
	for i, r := range m.rows {
		if r.node == n {
			m.cursor = i
			break
		}
	}
	m.scrollToCursor()
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.rows)-1, m.cursor+delta))
	m.scrollToCursor()
}

func (m *Model) treeHeight() int {
	// header, status line, detail pane and help bar
	return max(1, m.height-14)
}

func (m *Model) scrollToCursor() {
	h := m.treeHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func (m *Model) renderTree() string {
	h := m.treeHeight()
	end := min(len(m.rows), m.offset+h)

	lines := make([]string, 0, h)
	for i := m.offset; i < end; i++ {
		line := m.renderRow(m.rows[i])
		if i == m.cursor {
			line = utils.SelectedStyle.Render(utils.PadRight(line, m.width))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(r row) string {
	marker := "  "
	if r.node.HasChildren() {
		marker = "▸ "
		if m.expanded[r.node] {
			marker = "▾ "
		}
	}

	headline := utils.SanitizeString(r.node.Headline())
	if m.width > 0 {
		headline = utils.TruncateString(headline, max(4, m.width-2*r.depth-2))
	}

	style := utils.TextStyle
	switch r.node.Kind {
	case model.KindRecursion:
		style = utils.WarningStyle
	case model.KindGroup, model.KindInfo:
		style = utils.InfoStyle
	case model.KindError:
		style = utils.CriticalStyle
	}
	return strings.Repeat("  ", r.depth) + utils.MutedStyle.Render(marker) + style.Render(headline)
}

// renderDetails shows the data rows and generated source of the selection
func (m *Model) renderDetails() string {
	n := m.selected()
	if n == nil {
		return ""
	}

	var lines []string
	if n.Source != "" {
		lines = append(lines, utils.SourceStyle.Render("= "+n.Source))
	}
	keyWidth := 0
	for _, kv := range n.Data {
		keyWidth = max(keyWidth, len(kv.Key)+2)
	}
	for _, kv := range n.Data {
		value := strings.SplitN(kv.Value, "\n", 2)[0]
		lines = append(lines, utils.FormatKeyValue(kv.Key, utils.TruncateString(utils.SanitizeString(value), max(10, m.width-keyWidth-6)), keyWidth))
	}
	if len(lines) == 0 {
		lines = append(lines, utils.MutedStyle.Render("no details"))
	}
	if len(lines) > 8 {
		lines = append(lines[:7], utils.MutedStyle.Render("..."))
	}

	return utils.BoxStyle.Width(max(20, m.width-2)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
