package vardig

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/mabhi256/vardig/internal/chunks"
	"github.com/mabhi256/vardig/internal/config"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/internal/render"
	"github.com/mabhi256/vardig/internal/render/cli"
	"github.com/mabhi256/vardig/internal/render/html"
	"github.com/mabhi256/vardig/internal/render/tui"
	"github.com/mattn/go-isatty"
)

// ResolveOutput turns "auto" into the CLI tree on a terminal and an HTML
// file everywhere else
func ResolveOutput(output string, w io.Writer) string {
	if output != config.OutputAuto {
		return output
	}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return config.OutputCLI
		}
	}
	return config.OutputHTML
}

// Render writes report in the configured output format
func (d *Dumper) Render(report *model.Report) error {
	return d.RenderAs(d.cfg.Output, report)
}

// RenderAs writes report in the given output format. HTML reports go to a
// file in output_dir and the path is printed.
func (d *Dumper) RenderAs(output string, report *model.Report) error {
	if report == nil {
		return fmt.Errorf("nothing to render")
	}

	switch ResolveOutput(output, d.out) {
	case config.OutputCLI:
		return cli.New().Render(d.out, report)
	case config.OutputTUI:
		return tui.New().Render(d.out, report)
	case config.OutputHTML:
		path, err := d.WriteHTML(report, "")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(d.out, "vardig report written to %s\n", path)
		return err
	}
	return fmt.Errorf("invalid output format: %s. Valid options: %v", output, config.ValidOutputs)
}

// WriteHTML writes report as an HTML file and returns its absolute path. An
// empty path picks a name in output_dir.
func (d *Dumper) WriteHTML(report *model.Report, path string) (string, error) {
	store, err := chunks.NewStore(d.cfg.ChunkSize, d.cfg.ChunkDir)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			d.logger.Warn("failed to clean up chunks", "error", err)
		}
	}()

	if path == "" {
		name := fmt.Sprintf("vardig-%s-%d%s", time.Now().Format("20060102_150405"), report.Stats.CallCount, html.Ext)
		path = filepath.Join(d.cfg.OutputDir, name)
	}

	absPath, err := render.WriteReportFile(path, html.Ext, html.New(store), report)
	if err != nil {
		return "", err
	}
	d.logger.Info("report written", "path", absPath, "chunks", store.Len())
	return absPath, nil
}

func (d *Dumper) emit(report *model.Report) {
	if report == nil {
		return
	}
	if err := d.Render(report); err != nil {
		d.logger.Error("failed to render report", "error", err)
	}
}
