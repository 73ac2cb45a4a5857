package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		dumpName, dumpOutFile = "", ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVariableName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"config.yaml", "config"},
		{"dir/my-data.json", "my_data"},
		{"9lives.yml", "_lives"},
		{".json", "data"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, variableName(tt.path))
		})
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": [1, 2], "b": {"c": true}}`), 0644))

	data, err := decodeFile(path)
	require.NoError(t, err)

	m, ok := data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{1, 2}, m["a"])
}

func TestDumpCommandCLI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8080\n  hosts: [a, b]\n"), 0644))

	out, err := run(t, "dump", path, "-o", "cli")
	require.NoError(t, err)
	assert.Contains(t, out, "Dump of settings")
	assert.Contains(t, out, "8080")
	assert.Contains(t, out, `settings["server"].(map[string]any)["port"]`)
}

func TestDumpCommandHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2, 3]`), 0644))
	report := filepath.Join(dir, "out", "report")

	out, err := run(t, "dump", path, "--out", report)
	require.NoError(t, err)
	assert.Contains(t, out, "report.html")

	content, err := os.ReadFile(report + ".html")
	require.NoError(t, err)
	assert.Contains(t, string(content), "d[2]")
}

func TestDumpCommandRejectsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := run(t, "dump", path)
	assert.ErrorContains(t, err, "invalid data file")
}

func TestDemoCommand(t *testing.T) {
	out, err := run(t, "demo", "-o", "cli")
	require.NoError(t, err)
	assert.Contains(t, out, "Dump of customer")
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "gold")
}

func TestConfigCommand(t *testing.T) {
	out, err := run(t, "config", "--max-nesting", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "max_nesting: 7")
}
