package analyzer

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/mabhi256/vardig/internal/model"
)

// excerptRadius is the number of source lines shown around a frame's line
const excerptRadius = 3

// CaptureFrames returns the stack of the caller, skip frames above it
func CaptureFrames(skip int) []runtime.Frame {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}
	iter := runtime.CallersFrames(pcs[:n])

	var frames []runtime.Frame
	for {
		frame, more := iter.Next()
		frames = append(frames, frame)
		if !more {
			break
		}
	}
	return frames
}

// AnalyseBacktrace renders frames, innermost first, with source excerpts
func (s *Session) AnalyseBacktrace(frames []runtime.Frame) *model.Node {
	root := groupNode("Backtrace", "backtrace")
	root.CodegenType = model.CodegenStop
	root.Normal = strconv.Itoa(len(frames)) + " frames"

	sources := map[string][]string{}
	for i, f := range frames {
		if !s.emergency.CheckEmergencyBreak() {
			break
		}

		node := model.NewNode(strconv.Itoa(i), "frame", model.KindFrame)
		node.HelpID = "frame"
		node.Normal = f.Function
		node.CodegenType = model.CodegenStop
		node.AddData("Function", f.Function)
		if f.File != "" {
			node.AddData("File", f.File+":"+strconv.Itoa(f.Line))
			node.AddData("Source", excerpt(sources, f.File, f.Line))
		}
		root.AddChild(node)
	}

	s.codegen.Apply(root)
	return root
}

// excerpt returns the lines around line, the line itself marked with ">".
// Files are read once per backtrace.
func excerpt(cache map[string][]string, file string, line int) string {
	lines, ok := cache[file]
	if !ok {
		data, err := os.ReadFile(file)
		if err == nil {
			lines = strings.Split(string(data), "\n")
		}
		cache[file] = lines
	}
	if line < 1 || line > len(lines) {
		return ""
	}

	from := max(line-excerptRadius, 1)
	to := min(line+excerptRadius, len(lines))
	width := len(strconv.Itoa(to))

	var b strings.Builder
	for n := from; n <= to; n++ {
		marker := " "
		if n == line {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %*d | %s\n", marker, width, n, strings.TrimRight(lines[n-1], "\r"))
	}
	return strings.TrimRight(b.String(), "\n")
}
