package comment

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

// MethodDoc describes one method of a named type as read from source
type MethodDoc struct {
	Name        string
	Doc         string
	Params      string
	Results     string
	File        string
	Line        int
	Exported    bool
	Promoted    bool
	PointerRecv bool
	Variadic    bool
}

// DeclaredIn formats the declaration position as file:line
func (m *MethodDoc) DeclaredIn() string {
	if m.File == "" {
		return ""
	}
	return m.File + ":" + strconv.Itoa(m.Line)
}

// ConstDoc is a package-level constant of a named type
type ConstDoc struct {
	Name  string
	Value string
	Doc   string
}

// Directive is a "//name:arg" line attached to a type declaration
type Directive struct {
	Name string
	Arg  string
}

func (d Directive) String() string {
	if d.Arg == "" {
		return d.Name
	}
	return d.Name + ": " + d.Arg
}

// TypeRef points at a named type by package path and name
type TypeRef struct {
	PkgPath string
	Name    string
}

func (r TypeRef) String() string {
	return r.PkgPath + "." + r.Name
}

// ClassDoc is the documentation model of a named type. Parent is the first
// embedded struct, Traits the remaining embedded types and Interfaces the
// interfaces of the same package that *T implements, in declaration order.
type ClassDoc struct {
	Name       string
	PkgPath    string
	PkgName    string
	Doc        string
	Directives []Directive
	File       string
	Line       int
	IsStruct   bool

	Parent     *ClassDoc
	Interfaces []*ClassDoc
	Traits     []*ClassDoc

	Methods   map[string]*MethodDoc
	Constants []ConstDoc
	FieldDocs map[string]string

	parentRef     *TypeRef
	interfaceRefs []TypeRef
	traitRefs     []TypeRef
	linked        bool
}

// NewClassDoc creates an empty model for pkgPath.name
func NewClassDoc(pkgPath, name string) *ClassDoc {
	return &ClassDoc{
		Name:      name,
		PkgPath:   pkgPath,
		PkgName:   lastElem(pkgPath),
		Methods:   make(map[string]*MethodDoc),
		FieldDocs: make(map[string]string),
	}
}

// QualifiedName returns "pkgpath.Type"
func (c *ClassDoc) QualifiedName() string {
	return c.PkgPath + "." + c.Name
}

// Method returns the documentation of a method declared on or promoted to the type
func (c *ClassDoc) Method(name string) (*MethodDoc, bool) {
	if c == nil {
		return nil, false
	}
	m, ok := c.Methods[name]
	return m, ok
}

// AddMethod registers a method
func (c *ClassDoc) AddMethod(m *MethodDoc) {
	c.Methods[m.Name] = m
}

// SortedMethods returns the methods sorted by name
func (c *ClassDoc) SortedMethods() []*MethodDoc {
	out := make([]*MethodDoc, 0, len(c.Methods))
	for _, m := range c.Methods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AllTraits returns embedded types depth-first, traits of traits included,
// each type at most once.
func (c *ClassDoc) AllTraits() []*ClassDoc {
	var out []*ClassDoc
	seen := map[*ClassDoc]bool{c: true}
	var visit func([]*ClassDoc)
	visit = func(list []*ClassDoc) {
		for _, t := range list {
			if t == nil || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
			visit(append([]*ClassDoc{t.Parent}, t.Traits...))
		}
	}
	visit(c.Traits)
	return out
}

// DirectiveStrings renders the directives for display
func (c *ClassDoc) DirectiveStrings() []string {
	out := make([]string, 0, len(c.Directives))
	for _, d := range c.Directives {
		out = append(out, d.String())
	}
	return out
}

func (c *ClassDoc) refs() []TypeRef {
	var out []TypeRef
	if c.parentRef != nil {
		out = append(out, *c.parentRef)
	}
	out = append(out, c.interfaceRefs...)
	out = append(out, c.traitRefs...)
	return slices.Clip(out)
}

func lastElem(pkgPath string) string {
	if i := strings.LastIndex(pkgPath, "/"); i >= 0 {
		return pkgPath[i+1:]
	}
	return pkgPath
}
