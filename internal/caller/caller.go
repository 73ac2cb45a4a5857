// Package caller finds the source expression a dump call was made with.
package caller

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/mabhi256/vardig/internal/codegen"
)

// Site describes where a dump call was issued
type Site struct {
	File     string
	Line     int
	Function string

	// VarName is the text of the first call argument, codegen.UnknownScope
	// when it cannot be determined.
	VarName string
	// SelfToken is the receiver name of the enclosing method, if any
	SelfToken string
}

type parsedFile struct {
	fset *token.FileSet
	file *ast.File
	src  []byte
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*parsedFile{}
)

// Find inspects the frame skip levels above its caller and looks for a call
// to one of funcNames on that line.
func Find(skip int, funcNames ...string) Site {
	site := Site{VarName: codegen.UnknownScope}

	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return site
	}
	site.File, site.Line = file, line
	if fn := runtime.FuncForPC(pc); fn != nil {
		site.Function = fn.Name()
	}

	pf, err := parse(file)
	if err != nil {
		return site
	}
	site.VarName, site.SelfToken = resolve(pf, line, funcNames)
	return site
}

// FromSource resolves the call expression on line of an in-memory file
func FromSource(filename string, src []byte, line int, funcNames ...string) (Site, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return Site{VarName: codegen.UnknownScope}, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	varName, self := resolve(&parsedFile{fset: fset, file: f, src: src}, line, funcNames)
	return Site{File: filename, Line: line, VarName: varName, SelfToken: self}, nil
}

func parse(filename string) (*parsedFile, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if pf, ok := cache[filename]; ok {
		return pf, nil
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	pf := &parsedFile{fset: fset, file: f, src: src}
	cache[filename] = pf
	return pf, nil
}

// resolve returns the argument text and receiver name of the single matching
// call on line. Several matching calls on one line are ambiguous.
func resolve(pf *parsedFile, line int, funcNames []string) (string, string) {
	var calls []*ast.CallExpr
	ast.Inspect(pf.file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || pf.fset.Position(call.Pos()).Line != line {
			return true
		}
		if matchesName(call.Fun, funcNames) {
			calls = append(calls, call)
		}
		return true
	})

	if len(calls) != 1 || len(calls[0].Args) == 0 {
		return codegen.UnknownScope, ""
	}

	call := calls[0]
	text := exprText(pf, call.Args[0])
	if text == "" {
		return codegen.UnknownScope, ""
	}
	return text, receiverAt(pf.file, call.Pos())
}

func matchesName(fun ast.Expr, names []string) bool {
	var name string
	switch f := fun.(type) {
	case *ast.Ident:
		name = f.Name
	case *ast.SelectorExpr:
		name = f.Sel.Name
	case *ast.IndexExpr:
		return matchesName(f.X, names)
	default:
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func exprText(pf *parsedFile, e ast.Expr) string {
	tf := pf.fset.File(e.Pos())
	if tf == nil {
		return ""
	}
	start, end := tf.Offset(e.Pos()), tf.Offset(e.End())
	if start < 0 || end > len(pf.src) || start >= end {
		return ""
	}
	text := bytes.TrimSpace(pf.src[start:end])
	return strings.Join(strings.Fields(string(text)), " ")
}

func receiverAt(f *ast.File, pos token.Pos) string {
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || pos < fd.Pos() || pos > fd.End() {
			continue
		}
		if len(fd.Recv.List) == 0 || len(fd.Recv.List[0].Names) == 0 {
			return ""
		}
		name := fd.Recv.List[0].Names[0].Name
		if name == "_" {
			return ""
		}
		return name
	}
	return ""
}
