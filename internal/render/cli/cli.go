// Package cli prints a report as a styled tree on the terminal.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/internal/render"
	"github.com/mabhi256/vardig/utils"
)

// Renderer prints reports as a tree
type Renderer struct {
	ShowData   bool
	ShowSource bool
	MaxWidth   int // data values are cut to this many runes, 0 means no limit
}

// New creates a renderer that shows data rows and generated source
func New() *Renderer {
	return &Renderer{ShowData: true, ShowSource: true, MaxWidth: 120}
}

func (r *Renderer) Render(w io.Writer, report *model.Report) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	var sections []string
	if report.Title != "" {
		sections = append(sections, utils.TitleStyle.Render(report.Title))
	}
	for _, m := range report.Messages {
		sections = append(sections, utils.WarningStyle.Render("! "+m))
	}
	if report.Root != nil {
		sections = append(sections, r.tree(report.Root).String())
	}
	sections = append(sections, r.footer(report))

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, sections...))
	return err
}

func (r *Renderer) tree(n *model.Node) *tree.Tree {
	t := tree.Root(r.headline(n)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(utils.MutedStyle)

	if r.ShowSource && n.Source != "" {
		t.Child(utils.SourceStyle.Render("= " + n.Source))
	}
	if r.ShowData {
		for _, kv := range n.Data {
			t.Child(r.dataRow(kv))
		}
	}
	for _, c := range n.Children {
		if c.HasChildren() || (r.ShowData && len(c.Data) > 0) || (r.ShowSource && c.Source != "") {
			t.Child(r.tree(c))
			continue
		}
		t.Child(r.headline(c))
	}
	return t
}

func (r *Renderer) headline(n *model.Node) string {
	var b strings.Builder

	left := strings.ReplaceAll(n.ConnectorLeft, model.FirstMarker, "")
	right := strings.ReplaceAll(n.ConnectorRight, model.FirstMarker, "")
	b.WriteString(utils.MutedStyle.Render(left))
	b.WriteString(utils.NameStyle.Render(n.Name))
	b.WriteString(utils.MutedStyle.Render(right))

	if n.Type != "" {
		b.WriteString(" ")
		b.WriteString(utils.TypeStyle.Render("(" + n.Type + ")"))
	}

	text := n.Preview
	if text == "" {
		text = n.Normal
	}
	if text != "" {
		b.WriteString(" ")
		b.WriteString(utils.ValueStyle(valueTag(n)).Render(utils.SanitizeString(text)))
	}
	if n.IsRecursion() {
		b.WriteString(" ")
		b.WriteString(utils.WarningStyle.Render("-> #" + n.RecursionTarget))
	}
	return b.String()
}

// dataRow renders one extra information row. Multi-line values such as
// source excerpts keep their lines.
func (r *Renderer) dataRow(kv model.KeyValue) string {
	lines := strings.Split(kv.Value, "\n")
	for i, line := range lines {
		line = utils.SanitizeString(line)
		if r.MaxWidth > 0 {
			line = utils.TruncateString(line, r.MaxWidth)
		}
		lines[i] = line
	}
	key := utils.InfoStyle.Render(kv.Key + ":")
	if len(lines) == 1 {
		return key + " " + utils.TextStyle.Render(lines[0])
	}
	return key + "\n" + utils.TextStyle.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) footer(report *model.Report) string {
	rows := render.Footer(report)
	width := 0
	for _, kv := range rows {
		width = max(width, len(kv.Key)+2)
	}

	lines := make([]string, len(rows))
	for i, kv := range rows {
		lines[i] = utils.FormatKeyValue(kv.Key, kv.Value, width)
	}
	return utils.BoxStyle.Render(strings.Join(lines, "\n"))
}

// valueTag maps a node onto the type tags ValueStyle understands
func valueTag(n *model.Node) string {
	switch n.Kind {
	case model.KindRecursion:
		return "recursion"
	case model.KindNil:
		return "nil"
	case model.KindBool:
		return "bool"
	case model.KindString:
		return "string"
	case model.KindInt, model.KindFloat:
		return "int"
	}
	return n.Type
}
