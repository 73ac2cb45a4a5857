package vardig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mabhi256/vardig/internal/config"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDumper(t *testing.T, cfg *config.Config) (*Dumper, *bytes.Buffer) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.Output = config.OutputCLI
	var out bytes.Buffer
	d, err := New(cfg, WithOutput(&out))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d, &out
}

func TestDumpActionFindsVariable(t *testing.T) {
	d, _ := newTestDumper(t, nil)

	items := []int{4, 5}
	report := d.DumpAction(items, "", 0)
	require.NotNil(t, report)

	assert.Equal(t, "items", report.VarName)
	assert.Equal(t, "Dump of items", report.Title)
	assert.True(t, strings.HasSuffix(report.CallerFile, "dumper_test.go"))
	assert.Equal(t, "items", report.Root.Source)
	assert.Equal(t, "items[1]", report.Root.Children[1].Source)
	assert.Equal(t, 1, report.Stats.CallCount)
}

func TestDumpActionWithName(t *testing.T) {
	d, _ := newTestDumper(t, nil)

	report := d.DumpAction(map[string]int{"a": 1}, "counts", 0)
	require.NotNil(t, report)
	assert.Equal(t, `counts["a"]`, report.Root.Children[0].Source)
}

type reentrant struct {
	d      *Dumper
	called bool
	nested *model.Report
}

func (r *reentrant) GetNested() int {
	r.called = true
	r.nested = r.d.DumpAction(1, "inner", 0)
	return 1
}

func TestReentrantCallIsRefused(t *testing.T) {
	d, _ := newTestDumper(t, nil)

	subject := &reentrant{d: d}
	report := d.DumpAction(subject, "subject", 0)
	require.NotNil(t, report)

	assert.True(t, subject.called)
	assert.Nil(t, subject.nested)

	// the flag is released afterwards
	assert.NotNil(t, d.DumpAction(1, "after", 0))
}

func TestMaxCall(t *testing.T) {
	cfg := config.Default()
	cfg.MaxCall = 2
	d, _ := newTestDumper(t, cfg)

	assert.NotNil(t, d.DumpAction(1, "a", 0))
	last := d.DumpAction(2, "b", 0)
	require.NotNil(t, last)
	assert.Contains(t, last.Messages, "This is the last report allowed by max_call.")
	assert.Nil(t, d.DumpAction(3, "c", 0))
	assert.Nil(t, d.BacktraceAction(nil))
}

func TestDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Disabled = true
	d, out := newTestDumper(t, cfg)

	assert.Nil(t, d.DumpAction(1, "a", 0))
	d.Dump(1)
	assert.Empty(t, out.String())
}

func TestBacktraceAction(t *testing.T) {
	d, _ := newTestDumper(t, nil)

	report := d.BacktraceAction(nil)
	require.NotNil(t, report)
	assert.Equal(t, model.ReportBacktrace, report.Kind)
	require.NotEmpty(t, report.Root.Children)
	assert.Contains(t, report.Root.Children[0].Normal, "TestBacktraceAction")
	assert.True(t, strings.HasSuffix(report.CallerFile, "dumper_test.go"))
}

func TestDumpWritesCLI(t *testing.T) {
	d, out := newTestDumper(t, nil)

	answer := 42
	d.Dump(answer)

	assert.Contains(t, out.String(), "Dump of answer")
	assert.Contains(t, out.String(), "42")
}

func TestDefaultDumper(t *testing.T) {
	d, out := newTestDumper(t, nil)
	previous := Default()
	SetDefault(d)
	defer SetDefault(previous)

	greeting := "hello"
	Dump(greeting)
	assert.Contains(t, out.String(), "Dump of greeting")
}

func TestRecoverDumpsAndRepanics(t *testing.T) {
	d, out := newTestDumper(t, nil)

	var repanicked any
	func() {
		defer func() { repanicked = recover() }()
		defer d.Recover()
		panic("boom")
	}()

	assert.Equal(t, "boom", repanicked)
	assert.Contains(t, out.String(), "Recovered panic")
	assert.Contains(t, out.String(), `"boom"`)
	assert.Contains(t, out.String(), "Backtrace")
}

func TestWriteHTML(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.ChunkSize = 64
	d, out := newTestDumper(t, cfg)

	report := d.DumpAction(map[string][]int{"a": {1, 2, 3}}, "data", 0)
	require.NotNil(t, report)
	require.NoError(t, d.RenderAs(config.OutputHTML, report))

	assert.Contains(t, out.String(), "vardig report written to "+cfg.OutputDir)

	matches, err := filepath.Glob(filepath.Join(cfg.OutputDir, "vardig-*.html"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), `data[&#34;a&#34;][2]`)
	assert.NotContains(t, string(content), "@@@")
}

func TestResolveOutput(t *testing.T) {
	var b bytes.Buffer
	assert.Equal(t, config.OutputHTML, ResolveOutput(config.OutputAuto, &b))
	assert.Equal(t, config.OutputTUI, ResolveOutput(config.OutputTUI, &b))
}

func TestDebugLogging(t *testing.T) {
	cfg := config.Default()
	cfg.Debug = true
	cfg.DebugLogFile = filepath.Join(t.TempDir(), "debug.log")
	cfg.MaxCall = 1

	d, err := New(cfg, WithOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	d.DumpAction(1, "a", 0)
	d.DumpAction(2, "b", 0)
	require.NoError(t, d.Close())

	content, err := os.ReadFile(cfg.DebugLogFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "debug session started")
	assert.Contains(t, string(content), "max_call reached")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MaxNesting = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

type panicPayload struct {
	Code int
}

func TestPanicReportHasNoSource(t *testing.T) {
	d, _ := newTestDumper(t, nil)

	report := d.panicReport(&panicPayload{Code: 7})
	require.NotNil(t, report)

	assert.Equal(t, "Recovered panic", report.Title)
	assert.Equal(t, "panic", report.Root.Name)
	assert.Empty(t, report.Root.Source)
	code := report.Root.FindChild("Code")
	require.NotNil(t, code)
	assert.Equal(t, "7", code.Normal)
	assert.Empty(t, code.Source)
}
