// Package vardig dumps Go values and backtraces as browsable reports.
//
//	vardig.Dump(cfg)
//	defer vardig.Recover()
package vardig

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mabhi256/vardig/internal/analyzer"
	"github.com/mabhi256/vardig/internal/caller"
	"github.com/mabhi256/vardig/internal/codegen"
	"github.com/mabhi256/vardig/internal/comment"
	"github.com/mabhi256/vardig/internal/config"
	"github.com/mabhi256/vardig/internal/guard"
	"github.com/mabhi256/vardig/internal/model"
)

// Call names the call-site finder looks for on the calling line
var dumpFuncNames = []string{"Dump", "DumpAction"}

// Dumper lives for the whole process. It owns the guard whose call counter
// limits how many reports one process produces.
type Dumper struct {
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	emergency *guard.Emergency
	resolver  *comment.Resolver
	index     *comment.Index
	out       io.Writer

	analysisInProgress atomic.Bool
}

// Option customizes a Dumper
type Option func(*Dumper)

// WithLogger replaces the logger derived from the configuration
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dumper) {
		d.logger = logger
	}
}

// WithOutput sets where CLI output and report notices go (default stdout)
func WithOutput(w io.Writer) Option {
	return func(d *Dumper) {
		d.out = w
	}
}

// WithIndex sets the source index used for comments, constants and
// unexported methods
func WithIndex(idx *comment.Index) Option {
	return func(d *Dumper) {
		d.index = idx
	}
}

// New creates a Dumper. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) (*Dumper, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	d := &Dumper{
		cfg:       cfg,
		emergency: guard.NewEmergency(analyzer.LimitsFromConfig(cfg)),
		resolver:  comment.NewResolver(),
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		logger, closer, err := initDebugLogging(cfg)
		if err != nil {
			return nil, err
		}
		d.logger, d.logCloser = logger, closer
	}

	if d.index == nil && cfg.LoadSource {
		d.index = comment.NewIndex(cfg.SourceDir, d.logger)
	}
	return d, nil
}

// Config returns a copy of the effective configuration
func (d *Dumper) Config() *config.Config {
	return d.cfg.Clone()
}

// Logger returns the logger the Dumper writes to
func (d *Dumper) Logger() *slog.Logger {
	return d.logger
}

// Index returns the source index, nil when load_source is off
func (d *Dumper) Index() *comment.Index {
	return d.index
}

// Resolver returns the comment resolver shared by every call
func (d *Dumper) Resolver() *comment.Resolver {
	return d.resolver
}

// Close releases the debug log file
func (d *Dumper) Close() error {
	if d.logCloser == nil {
		return nil
	}
	return d.logCloser.Close()
}

// DumpAction analyses value and returns the report, or nil when the call is
// refused. An empty name lets the call-site finder read the expression from
// the source line level frames above the caller.
func (d *Dumper) DumpAction(value any, name string, level int) *model.Report {
	site := caller.Site{VarName: name}
	if name == "" {
		site = caller.Find(level+1, dumpFuncNames...)
	}

	rootName := site.VarName
	if rootName == codegen.UnknownScope {
		rootName = "value"
	}
	return d.dump(value, site, rootName)
}

// dump analyses value with the scope of site. rootName only labels the root
// node; code generation follows site.VarName.
func (d *Dumper) dump(value any, site caller.Site, rootName string) *model.Report {
	if !d.begin("dump") {
		return nil
	}
	defer d.end()

	session := analyzer.NewSession(analyzer.Options{
		Config:    d.cfg,
		Emergency: d.emergency,
		Resolver:  d.resolver,
		Index:     d.index,
		Logger:    d.logger,
		Scope:     site.VarName,
		SelfToken: site.SelfToken,
	})

	root := session.Analyse(value, rootName)

	report := d.newReport(model.ReportDump, "Dump of "+rootName, root, session.Emergency())
	report.VarName = site.VarName
	report.CallerFile, report.CallerLine = site.File, site.Line

	d.logger.Debug("dump finished",
		"var", site.VarName,
		"nodes", root.Count(),
		"call", report.Stats.CallCount,
	)
	return report
}

// BacktraceAction renders frames, or the stack of the caller when frames is nil
func (d *Dumper) BacktraceAction(frames []runtime.Frame) *model.Report {
	if frames == nil {
		frames = analyzer.CaptureFrames(1)
	}
	if !d.begin("backtrace") {
		return nil
	}
	defer d.end()

	session := analyzer.NewSession(analyzer.Options{
		Config:    d.cfg,
		Emergency: d.emergency,
		Resolver:  d.resolver,
		Index:     d.index,
		Logger:    d.logger,
	})
	root := session.AnalyseBacktrace(frames)

	report := d.newReport(model.ReportBacktrace, "Backtrace", root, session.Emergency())
	if len(frames) > 0 {
		report.CallerFile, report.CallerLine = frames[0].File, frames[0].Line
	}
	return report
}

// begin refuses disabled, re-entrant and over-budget calls
func (d *Dumper) begin(kind string) bool {
	if d.cfg.Disabled {
		return false
	}
	if !d.analysisInProgress.CompareAndSwap(false, true) {
		d.logger.Warn("analysis already in progress, call refused", "kind", kind)
		return false
	}
	if d.emergency.CheckMaxCall() {
		d.logger.Warn("max_call reached, call refused",
			"kind", kind,
			"calls", d.emergency.CallCount(),
			"max_call", d.cfg.MaxCall,
		)
		d.analysisInProgress.Store(false)
		return false
	}
	return true
}

func (d *Dumper) end() {
	d.analysisInProgress.Store(false)
}

func (d *Dumper) newReport(kind model.ReportKind, title string, root *model.Node, e *guard.Emergency) *model.Report {
	report := &model.Report{
		Kind:        kind,
		Title:       title,
		GeneratedAt: time.Now(),
		Root:        root,
		Stats:       e.Stats(),
	}
	if report.Stats.Tripped {
		report.AddMessage(fmt.Sprintf("Analysis stopped early: %s budget exceeded. The output is incomplete.", report.Stats.TripReason))
	}
	if report.Stats.CallCount == report.Stats.MaxCall {
		report.AddMessage("This is the last report allowed by max_call.")
	}
	return report
}

// Dump analyses v and writes the report to the configured output
func (d *Dumper) Dump(v any) {
	d.emit(d.DumpAction(v, "", 1))
}

// Backtrace writes the stack of the caller
func (d *Dumper) Backtrace() {
	d.emit(d.BacktraceAction(analyzer.CaptureFrames(1)))
}

// Recover dumps a panic value and its stack, then panics again. It must be
// deferred directly:
//
//	defer d.Recover()
func (d *Dumper) Recover() {
	r := recover()
	if r == nil {
		return
	}
	d.handlePanic(r)
	panic(r)
}

func (d *Dumper) handlePanic(r any) {
	d.logger.Error("panic recovered", "value", fmt.Sprint(r))
	if report := d.panicReport(r); report != nil {
		d.emit(report)
	}
	d.emit(d.BacktraceAction(analyzer.CaptureFrames(2)))
}

// panicReport dumps a recovered value. The value is not held by any variable
// at the call site, so no source is generated for it.
func (d *Dumper) panicReport(r any) *model.Report {
	report := d.dump(r, caller.Site{VarName: codegen.UnknownScope}, "panic")
	if report != nil {
		report.Title = "Recovered panic"
	}
	return report
}

var (
	defaultMu     sync.Mutex
	defaultDumper *Dumper
)

// Default returns the process-wide Dumper, creating it with the default
// configuration on first use
func Default() *Dumper {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultDumper == nil {
		d, err := New(config.Default())
		if err != nil {
			// the default configuration always validates
			panic(err)
		}
		defaultDumper = d
	}
	return defaultDumper
}

// SetDefault replaces the process-wide Dumper
func SetDefault(d *Dumper) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultDumper = d
}

// Dump analyses v with the default Dumper
func Dump(v any) {
	d := Default()
	d.emit(d.DumpAction(v, "", 1))
}

// Backtrace writes the stack of the caller with the default Dumper
func Backtrace() {
	d := Default()
	d.emit(d.BacktraceAction(analyzer.CaptureFrames(1)))
}

// Recover dumps a panic value with the default Dumper and panics again.
// It must be deferred directly.
func Recover() {
	r := recover()
	if r == nil {
		return
	}
	Default().handlePanic(r)
	panic(r)
}
