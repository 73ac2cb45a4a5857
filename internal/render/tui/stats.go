package tui

import (
	"sort"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/internal/render"
	"github.com/mabhi256/vardig/utils"
)

const (
	ChartHeight   = 12
	MinChartWidth = 20
)

var kindStyles = map[model.Kind]lipgloss.Style{
	model.KindString:    utils.StringStyle,
	model.KindInt:       utils.NumberStyle,
	model.KindFloat:     utils.NumberStyle,
	model.KindObject:    utils.InfoStyle,
	model.KindArray:     utils.InfoStyle,
	model.KindRecursion: utils.WarningStyle,
	model.KindError:     utils.CriticalStyle,
}

// kindBars returns one bar per node kind present in the tree, largest first
func kindBars(root *model.Node) []barchart.BarData {
	if root == nil {
		return nil
	}

	counts := root.KindCounts()
	kinds := make([]model.Kind, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if counts[kinds[i]] != counts[kinds[j]] {
			return counts[kinds[i]] > counts[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})

	bars := make([]barchart.BarData, 0, len(kinds))
	for _, kind := range kinds {
		style, ok := kindStyles[kind]
		if !ok {
			style = utils.TextStyle
		}
		bars = append(bars, barchart.BarData{
			Label: kind.String(),
			Values: []barchart.BarValue{
				{Name: kind.String(), Value: float64(counts[kind]), Style: style},
			},
		})
	}
	return bars
}

func (m *Model) renderStats() string {
	var sections []string

	bars := kindBars(m.report.Root)
	if len(bars) > 0 {
		chart := barchart.New(max(MinChartWidth, m.width-4), ChartHeight)
		chart.PushAll(bars)
		chart.Draw()
		sections = append(sections,
			utils.TitleStyle.Render("Nodes by kind"),
			chart.View(),
			m.kindLegend(bars),
		)
	}

	rows := render.Footer(m.report)
	keyWidth := 0
	for _, kv := range rows {
		keyWidth = max(keyWidth, len(kv.Key)+2)
	}
	lines := make([]string, len(rows))
	for i, kv := range rows {
		lines[i] = utils.FormatKeyValue(kv.Key, kv.Value, keyWidth)
	}
	sections = append(sections, utils.TitleStyle.Render("Guard"), utils.BoxStyle.Render(strings.Join(lines, "\n")))

	for _, msg := range m.report.Messages {
		sections = append(sections, utils.WarningStyle.Render("! "+msg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) kindLegend(bars []barchart.BarData) string {
	parts := make([]string, len(bars))
	for i, b := range bars {
		v := b.Values[0]
		parts[i] = v.Style.Render("■") + " " + b.Label + " " + utils.MutedStyle.Render(strconv.Itoa(int(v.Value)))
	}
	return strings.Join(parts, "  ")
}
