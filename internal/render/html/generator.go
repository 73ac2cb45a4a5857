// Package html renders a report as a single self-contained HTML file with
// collapsible nodes.
package html

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/mabhi256/vardig/internal/chunks"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/internal/render"
)

// Embed template files at compile time
//
//go:embed templates/template.html
var htmlTemplate string

//go:embed templates/styles.css
var cssContent string

//go:embed templates/app.js
var jsContent string

// Ext is the file extension of HTML reports
const Ext = ".html"

// Renderer writes HTML reports. Subtrees larger than the chunk threshold are
// parked in the chunk store and streamed back in when the report is sent.
type Renderer struct {
	store *chunks.Store
}

// New creates an HTML renderer backed by store. A nil store keeps
// everything in memory.
func New(store *chunks.Store) *Renderer {
	return &Renderer{store: store}
}

// Render writes the complete report to w
func (r *Renderer) Render(w io.Writer, report *model.Report) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	store := r.store
	if store == nil {
		var err error
		if store, err = chunks.NewStore(0, ""); err != nil {
			return err
		}
	}

	var tree string
	if report.Root != nil {
		var err error
		if tree, err = r.node(store, report.Root); err != nil {
			return err
		}
	}

	content := generateSingleFileHTMLContent(report, tree)
	if err := store.Send(w, content); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	return nil
}

// node renders n and its subtree. Text is escaped here and nowhere else.
func (r *Renderer) node(store *chunks.Store, n *model.Node) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, `<li class="vd-node vd-kind-%s"`, n.Kind)
	if n.DomID != "" {
		fmt.Fprintf(&b, ` id="%s"`, esc(n.DomID))
	}
	b.WriteString(">")

	expandable := n.HasChildren() || len(n.Data) > 0 || n.Source != ""
	if !expandable {
		b.WriteString(`<div class="vd-leaf">`)
		writeSummary(&b, n)
		b.WriteString("</div></li>\n")
		return b.String(), nil
	}

	b.WriteString("<details><summary>")
	writeSummary(&b, n)
	b.WriteString("</summary>")

	if len(n.Data) > 0 {
		b.WriteString(`<dl class="vd-data">`)
		for _, kv := range n.Data {
			fmt.Fprintf(&b, "<dt>%s</dt><dd>%s</dd>", esc(kv.Key), esc(kv.Value))
		}
		b.WriteString("</dl>")
	}

	if n.Source != "" {
		fmt.Fprintf(&b, `<div class="vd-source" title="click to copy">%s</div>`, esc(n.Source))
	}

	if n.HasChildren() {
		var children strings.Builder
		for _, c := range n.Children {
			s, err := r.node(store, c)
			if err != nil {
				return "", err
			}
			children.WriteString(s)
		}
		chunk, err := store.Chunk(children.String())
		if err != nil {
			return "", err
		}
		b.WriteString(`<ul class="vd-children">`)
		b.WriteString(chunk)
		b.WriteString("</ul>")
	}

	b.WriteString("</details></li>\n")
	return b.String(), nil
}

func writeSummary(b *strings.Builder, n *model.Node) {
	left := strings.ReplaceAll(n.ConnectorLeft, model.FirstMarker, "")
	right := strings.ReplaceAll(n.ConnectorRight, model.FirstMarker, "")

	if left != "" {
		fmt.Fprintf(b, `<span class="vd-connector">%s</span>`, esc(left))
	}
	fmt.Fprintf(b, `<span class="vd-name">%s</span>`, esc(n.Name))
	if right != "" {
		fmt.Fprintf(b, `<span class="vd-connector">%s</span>`, esc(right))
	}
	if n.Type != "" {
		fmt.Fprintf(b, ` <span class="vd-type">(%s)</span>`, esc(n.Type))
	}

	text := n.Preview
	if text == "" {
		text = n.Normal
	}
	if text != "" {
		fmt.Fprintf(b, `<span class="vd-normal">%s</span>`, esc(text))
	}
	if n.IsRecursion() {
		fmt.Fprintf(b, ` <a class="vd-recursion" href="#%s">&#8635; jump</a>`, esc(n.RecursionTarget))
	}
}

// generateSingleFileHTMLContent creates the single-file HTML with embedded CSS/JS
func generateSingleFileHTMLContent(report *model.Report, tree string) string {
	title := report.Title
	if title == "" {
		title = "vardig"
	}

	var messages string
	if len(report.Messages) > 0 {
		var b strings.Builder
		b.WriteString(`<ul class="vd-messages">`)
		for _, m := range report.Messages {
			fmt.Fprintf(&b, "<li>%s</li>", esc(m))
		}
		b.WriteString("</ul>")
		messages = b.String()
	}

	var footer strings.Builder
	for _, kv := range render.Footer(report) {
		fmt.Fprintf(&footer, "      <dt>%s</dt><dd>%s</dd>\n", esc(kv.Key), esc(kv.Value))
	}

	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	// one pass, so text inside the report is never taken for a placeholder
	replacer := strings.NewReplacer(
		"{{CSS_CONTENT}}", cssContent,
		"{{JS_CONTENT}}", jsContent,
		"{{TITLE}}", esc(title),
		"{{GENERATED_AT}}", generated.Format(time.RFC3339),
		"{{MESSAGES}}", messages,
		"{{TREE}}", tree,
		"{{FOOTER}}", footer.String(),
	)
	return replacer.Replace(htmlTemplate)
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}
