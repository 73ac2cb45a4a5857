package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mabhi256/vardig/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.MaxNesting)
	assert.Equal(t, 64*utils.MB, cfg.MemoryBudget)
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vardig.yaml")
	content := `
analyse_protected: true
max_nesting: 9
max_runtime: 5s
memory_budget: 128M
output: html
debug_methods: "String, Dump"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.AnalyseProtected)
	assert.False(t, cfg.AnalysePrivate)
	assert.Equal(t, 9, cfg.MaxNesting)
	assert.Equal(t, 5*time.Second, cfg.MaxRuntime)
	assert.Equal(t, 128*utils.MB, cfg.MemoryBudget)
	assert.Equal(t, OutputHTML, cfg.Output)
	assert.Equal(t, []string{"String", "Dump"}, cfg.DebugMethodList())
	// untouched keys keep their defaults
	assert.Equal(t, 300, cfg.ArrayCountLimit)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero nesting", "max_nesting: 0\n"},
		{"bad output", "output: pdf\n"},
		{"zero array limit", "array_count_limit: 0\n"},
		{"broken yaml", "max_nesting: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDebugMethodDenyList(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.IsDebugMethodDenied("*bytes.Buffer", "String"))
	assert.False(t, cfg.IsDebugMethodDenied("bytes.Buffer", "String"))
	assert.False(t, cfg.IsDebugMethodDenied("*main.Thing", "String"))
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.MaxNesting = 42
	assert.Equal(t, 5, cfg.MaxNesting)
}
