// Package render turns analysis reports into output.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/utils"
)

// Renderer writes a report to w
type Renderer interface {
	Render(w io.Writer, report *model.Report) error
}

// WriteReportFile renders report into the file at path and returns the
// absolute path written. An empty path picks a timestamped default name.
func WriteReportFile(path, ext string, r Renderer, report *model.Report) (string, error) {
	absPath, err := GetOutputPath(path, ext)
	if err != nil {
		return "", err
	}

	f, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file %s: %w", absPath, err)
	}

	if err := r.Render(f, report); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write report file %s: %w", absPath, err)
	}
	return absPath, nil
}

// GetOutputPath returns a safe output path with the given extension,
// creating directories if needed
func GetOutputPath(path, ext string) (string, error) {
	outputPath := path
	if outputPath == "" {
		outputPath = GetDefaultOutputPath(ext)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(outputPath), ext) {
		outputPath += ext
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", outputPath, err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return absPath, nil
}

// GetDefaultOutputPath returns a timestamped report file name
func GetDefaultOutputPath(ext string) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("vardig-%s%s", timestamp, ext)
}

// Footer lists the guard statistics shown below every report
func Footer(report *model.Report) []model.KeyValue {
	st := report.Stats
	rows := []model.KeyValue{
		{Key: "Call", Value: strconv.Itoa(st.CallCount) + " of " + strconv.Itoa(st.MaxCall)},
		{Key: "Max nesting", Value: strconv.Itoa(st.MaxNesting)},
		{Key: "Runtime", Value: utils.FormatDuration(st.Elapsed)},
		{Key: "Memory", Value: st.MemoryUsed.String()},
	}
	if report.Root != nil {
		rows = append(rows, model.KeyValue{Key: "Nodes", Value: strconv.Itoa(report.Root.Count())})
	}
	if st.Tripped {
		rows = append(rows, model.KeyValue{Key: "Emergency break", Value: st.TripReason})
	}
	if report.CallerFile != "" {
		rows = append(rows, model.KeyValue{Key: "Called from", Value: report.CallerFile + ":" + strconv.Itoa(report.CallerLine)})
	}
	return rows
}
