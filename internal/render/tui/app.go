// Package tui is an interactive terminal browser for reports.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/utils"
)

const PageSize = 10 // Number of lines to scroll per page

func initialModel(report *model.Report) *Model {
	m := &Model{
		report:     report,
		parent:     make(map[*model.Node]*model.Node),
		currentTab: TreeTab,
		expanded:   make(map[*model.Node]bool),
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}

	if report.Root != nil {
		report.Root.Walk(func(n *model.Node, _ int) bool {
			for _, c := range n.Children {
				m.parent[c] = n
			}
			return true
		})
		m.expanded[report.Root] = true
	}
	m.rebuildRows()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scrollToCursor()

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab1):
			m.currentTab = TreeTab
		case key.Matches(msg, m.keys.Tab2):
			m.currentTab = StatsTab
		case key.Matches(msg, m.keys.NextTab):
			utils.CycleEnumPtr(&m.currentTab, 1, StatsTab)
		case key.Matches(msg, m.keys.PrevTab):
			utils.CycleEnumPtr(&m.currentTab, -1, StatsTab)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		default:
			if m.currentTab == TreeTab {
				m.handleTreeKeys(msg)
			}
		}
	}

	return m, nil
}

func (m *Model) handleTreeKeys(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-PageSize)
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(PageSize)
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Collapse):
		m.collapse()
	case key.Matches(msg, m.keys.Expand):
		m.expand()
	case key.Matches(msg, m.keys.ExpandAll):
		m.expandAll()
	case key.Matches(msg, m.keys.Jump):
		m.jump()
	}
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.currentTab {
	case TreeTab:
		content = lipgloss.JoinVertical(lipgloss.Left, m.renderTree(), m.renderDetails())
	case StatsTab:
		content = m.renderStats()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderStatusBar(),
		utils.HelpBarStyle.Render(m.help.View(m.keys)),
	)
}

func (m *Model) renderHeader() string {
	tabs := []string{}
	tabNames := []string{"Tree", "Stats"}

	for i, name := range tabNames {
		style := utils.TabInactiveStyle
		indicator := " "

		if TabType(i) == m.currentTab {
			style = utils.TabActiveStyle
			indicator = "●"
		}

		tabs = append(tabs, style.Render(fmt.Sprintf("%s %s [%d]", indicator, name, i+1)))
	}

	title := m.report.Title
	if title == "" {
		title = "vardig"
	}
	tabLine := utils.TitleStyle.Render(title) + "  " + strings.Join(tabs, "  ")
	border := strings.Repeat("─", m.width)

	return lipgloss.JoinVertical(lipgloss.Left, tabLine, border)
}

func (m *Model) renderStatusBar() string {
	text := m.status
	if text == "" {
		if n := m.selected(); n != nil {
			text = fmt.Sprintf("%d/%d  %s", m.cursor+1, len(m.rows), n.Kind)
		}
	}
	return utils.StatusBarStyle.Width(m.width).Render(text)
}

// Renderer runs the interactive browser on the terminal
type Renderer struct {
	Input io.Reader
}

func New() *Renderer {
	return &Renderer{}
}

// Render blocks until the user quits the browser
func (r *Renderer) Render(w io.Writer, report *model.Report) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	opts := []tea.ProgramOption{
		tea.WithOutput(w),
		tea.WithAltScreen(),
	}
	if r.Input != nil {
		opts = append(opts, tea.WithInput(r.Input))
	}

	program := tea.NewProgram(initialModel(report), opts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run report browser: %w", err)
	}
	return nil
}
