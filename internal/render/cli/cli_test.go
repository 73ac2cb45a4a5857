package cli

import (
	"strings"
	"testing"

	"github.com/mabhi256/vardig/internal/guard"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *model.Report {
	root := model.NewNode("items", "[]int", model.KindArray)
	root.Normal = "2 elements"
	root.Source = "items"
	root.AddData("Length", "2")

	for i, v := range []string{"7", "9"} {
		child := model.NewNode(string(rune('0'+i)), "int", model.KindInt)
		child.ConnectorLeft = "["
		child.ConnectorRight = "]"
		child.Normal = v
		root.AddChild(child)
	}

	loop := model.NewNode("Self", "*main.T", model.KindRecursion)
	loop.ConnectorLeft = "."
	loop.RecursionTarget = "k1_x"
	root.AddChild(loop)

	return &model.Report{
		Title:    "items",
		Root:     root,
		Stats:    guard.Stats{CallCount: 2, MaxCall: 10},
		Messages: []string{"large array"},
	}
}

func TestRenderTree(t *testing.T) {
	var b strings.Builder
	require.NoError(t, New().Render(&b, sampleReport()))
	out := b.String()

	assert.Contains(t, out, "items")
	assert.Contains(t, out, "= items")
	assert.Contains(t, out, "Length:")
	assert.Contains(t, out, "[1]")
	assert.Contains(t, out, "9")
	assert.Contains(t, out, "-> #k1_x")
	assert.Contains(t, out, "! large array")
	assert.Contains(t, out, "2 of 10")
}

func TestRenderWithoutData(t *testing.T) {
	r := New()
	r.ShowData = false
	r.ShowSource = false

	var b strings.Builder
	require.NoError(t, r.Render(&b, sampleReport()))
	assert.NotContains(t, b.String(), "Length:")
	assert.NotContains(t, b.String(), "= items")
}

func TestDataRowKeepsLines(t *testing.T) {
	r := &Renderer{MaxWidth: 10}
	row := r.dataRow(model.KeyValue{Key: "Source", Value: "> 1 | first line here\n  2 | second"})
	assert.Contains(t, row, "Source:")
	assert.Contains(t, row, "> 1 | f...")
	assert.Contains(t, row, "  2 | s...")
}
