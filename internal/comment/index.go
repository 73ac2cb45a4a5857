package comment

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/tools/go/packages"
)

// Loader loads type-checked packages with syntax for the given patterns
type Loader func(dir string, patterns ...string) ([]*packages.Package, error)

// Index holds documentation models keyed by "pkgpath.Type". Packages are
// loaded lazily the first time one of their types is asked for. Load
// failures are logged and leave the package empty.
type Index struct {
	mu      sync.Mutex
	dir     string
	load    Loader
	logger  *slog.Logger
	classes map[string]*ClassDoc
	loaded  map[string]bool
}

// NewIndex creates an index reading source relative to dir
func NewIndex(dir string, logger *slog.Logger) *Index {
	idx := NewIndexFromDocs()
	idx.dir = dir
	idx.load = loadPackages
	if logger != nil {
		idx.logger = logger
	}
	return idx
}

// NewIndexFromDocs creates an index that never loads source and only knows docs
func NewIndexFromDocs(docs ...*ClassDoc) *Index {
	idx := &Index{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		classes: make(map[string]*ClassDoc),
		loaded:  make(map[string]bool),
	}
	idx.Add(docs...)
	return idx
}

// SetLoader replaces the package loader
func (idx *Index) SetLoader(load Loader) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.load = load
}

// Add registers docs and marks their packages as loaded
func (idx *Index) Add(docs ...*ClassDoc) {
	for _, cd := range docs {
		idx.classes[cd.QualifiedName()] = cd
		idx.loaded[cd.PkgPath] = true
	}
}

// Class returns the linked model of pkgPath.name, or nil when unknown
func (idx *Index) Class(pkgPath, name string) *ClassDoc {
	if pkgPath == "" || name == "" {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.ensure(pkgPath)
	cd, ok := idx.classes[pkgPath+"."+name]
	if !ok {
		return nil
	}
	idx.link(cd)
	return cd
}

// Len returns the number of known types
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.classes)
}

func (idx *Index) link(cd *ClassDoc) {
	if cd.linked {
		return
	}
	cd.linked = true

	for _, ref := range cd.refs() {
		idx.ensure(ref.PkgPath)
	}

	if cd.parentRef != nil {
		cd.Parent = idx.classes[cd.parentRef.String()]
	}
	cd.Interfaces = idx.resolveRefs(cd.interfaceRefs)
	cd.Traits = idx.resolveRefs(cd.traitRefs)

	if cd.Parent != nil {
		idx.link(cd.Parent)
	}
	for _, related := range cd.Interfaces {
		idx.link(related)
	}
	for _, related := range cd.Traits {
		idx.link(related)
	}
}

func (idx *Index) resolveRefs(refs []TypeRef) []*ClassDoc {
	var out []*ClassDoc
	for _, ref := range refs {
		if cd, ok := idx.classes[ref.String()]; ok {
			out = append(out, cd)
		}
	}
	return out
}

func (idx *Index) ensure(pkgPath string) {
	if idx.loaded[pkgPath] {
		return
	}
	idx.loaded[pkgPath] = true
	if idx.load == nil {
		return
	}

	// reflect reports the main package as "main"; go/packages needs a pattern
	pattern := pkgPath
	if pkgPath == "main" {
		pattern = "."
	}

	pkgs, err := idx.load(idx.dir, pattern)
	if err != nil {
		idx.logger.Warn("source index load failed", "package", pkgPath, "error", err)
		return
	}

	for _, p := range pkgs {
		if p == nil {
			continue
		}
		for _, perr := range p.Errors {
			idx.logger.Debug("source index package error", "package", p.PkgPath, "error", perr.Error())
		}
		if p.Types == nil || p.TypesInfo == nil {
			continue
		}

		docs := Convert(p.Fset, p.Types, p.Syntax, p.TypesInfo)
		if pkgPath == "main" && p.Name == "main" {
			rebase(docs, p.PkgPath, "main")
		}
		for _, cd := range docs {
			idx.classes[cd.QualifiedName()] = cd
		}
		idx.logger.Debug("source index loaded", "package", p.PkgPath, "types", len(docs))
	}
}

// rebase rewrites package paths of docs and of references into the same package
func rebase(docs []*ClassDoc, from, to string) {
	fix := func(ref *TypeRef) {
		if ref.PkgPath == from {
			ref.PkgPath = to
		}
	}
	for _, cd := range docs {
		cd.PkgPath = to
		if cd.parentRef != nil {
			fix(cd.parentRef)
		}
		for i := range cd.interfaceRefs {
			fix(&cd.interfaceRefs[i])
		}
		for i := range cd.traitRefs {
			fix(&cd.traitRefs[i])
		}
	}
}

func loadPackages(dir string, patterns ...string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedSyntax |
			packages.NeedTypes |
			packages.NeedTypesInfo,
		Dir: dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages %v: %w", patterns, err)
	}
	return pkgs, nil
}
