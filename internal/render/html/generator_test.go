package html

import (
	"strings"
	"testing"
	"time"

	"github.com/mabhi256/vardig/internal/chunks"
	"github.com/mabhi256/vardig/internal/guard"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *model.Report {
	root := model.NewNode("cfg", "*main.Config", model.KindObject)
	root.Normal = "main.Config"
	root.DomID = "k1_abc"
	root.Source = "cfg"

	name := model.NewNode("Name", "public string", model.KindString)
	name.ConnectorLeft = "."
	name.Normal = `"<script>alert(1)</script>"`
	name.Source = "cfg.Name"
	name.AddData("Length", "25")

	self := model.NewNode("Self", "public *main.Config", model.KindRecursion)
	self.ConnectorLeft = "."
	self.Normal = "main.Config"
	self.RecursionTarget = "k1_abc"

	root.AddChild(name, self)

	return &model.Report{
		Title:       "Dump of cfg & friends",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Root:        root,
		Stats:       guard.Stats{CallCount: 1, MaxCall: 10, MaxNesting: 5},
		Messages:    []string{"analysis stopped: runtime"},
	}
}

func TestRenderEscapesOnce(t *testing.T) {
	var b strings.Builder
	require.NoError(t, New(nil).Render(&b, sampleReport()))
	out := b.String()

	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, out, "<script>alert(1)")
	assert.NotContains(t, out, "&amp;lt;")
	assert.Contains(t, out, "<title>Dump of cfg &amp; friends</title>")
}

func TestRenderStructure(t *testing.T) {
	var b strings.Builder
	require.NoError(t, New(nil).Render(&b, sampleReport()))
	out := b.String()

	assert.Contains(t, out, `id="k1_abc"`)
	assert.Contains(t, out, `href="#k1_abc"`)
	assert.Contains(t, out, `<div class="vd-source" title="click to copy">cfg.Name</div>`)
	assert.Contains(t, out, "<dt>Length</dt><dd>25</dd>")
	assert.Contains(t, out, "analysis stopped: runtime")
	assert.Contains(t, out, "2026-01-02T03:04:05Z")
	assert.Contains(t, out, "<dt>Call</dt><dd>1 of 10</dd>")
	assert.NotContains(t, out, "{{")
}

func TestRenderResolvesChunks(t *testing.T) {
	store, err := chunks.NewStore(16, t.TempDir())
	require.NoError(t, err)
	defer store.Cleanup()

	var chunked strings.Builder
	require.NoError(t, New(store).Render(&chunked, sampleReport()))
	assert.Greater(t, store.Len(), 0)
	assert.NotContains(t, chunked.String(), "@@@")

	var plain strings.Builder
	require.NoError(t, New(nil).Render(&plain, sampleReport()))
	assert.Equal(t, plain.String(), chunked.String())
}

func TestRenderNilReport(t *testing.T) {
	var b strings.Builder
	assert.Error(t, New(nil).Render(&b, nil))
}
