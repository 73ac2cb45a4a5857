package comment

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"
)

// converter turns one type-checked package into documentation models
type converter struct {
	fset *token.FileSet
	pkg  *types.Package
	info *types.Info

	classes []*ClassDoc
	byName  map[string]*ClassDoc
	named   map[*ClassDoc]*types.Named
	ifaces  []*types.Named

	methodsByFunc map[string]*MethodDoc
	pendingMethod map[string][]*MethodDoc
	pendingConst  map[string][]ConstDoc
}

// Convert builds the documentation models of every named type declared in
// files. Relations to other types are recorded as references and linked by
// the Index.
func Convert(fset *token.FileSet, pkg *types.Package, files []*ast.File, info *types.Info) []*ClassDoc {
	c := &converter{
		fset:          fset,
		pkg:           pkg,
		info:          info,
		byName:        make(map[string]*ClassDoc),
		named:         make(map[*ClassDoc]*types.Named),
		methodsByFunc: make(map[string]*MethodDoc),
		pendingMethod: make(map[string][]*MethodDoc),
		pendingConst:  make(map[string][]ConstDoc),
	}

	for _, file := range files {
		if file == nil {
			continue
		}
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				switch d.Tok {
				case token.TYPE:
					c.handleTypeDecl(d)
				case token.CONST:
					c.handleConstDecl(d)
				}
			case *ast.FuncDecl:
				c.handleFuncDecl(d)
			}
		}
	}

	c.attachPending()
	c.addPromotedMethods()
	c.addInterfaces()
	return c.classes
}

func (c *converter) handleTypeDecl(gd *ast.GenDecl) {
	for _, spec := range gd.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		obj, ok := c.info.Defs[ts.Name].(*types.TypeName)
		if !ok || obj.IsAlias() {
			continue
		}
		named, ok := obj.Type().(*types.Named)
		if !ok {
			continue
		}

		cd := NewClassDoc(c.pkg.Path(), ts.Name.Name)
		cd.PkgName = c.pkg.Name()

		group := ts.Doc
		if group == nil && len(gd.Specs) == 1 {
			group = gd.Doc
		}
		cd.Doc = strings.TrimSpace(group.Text())
		cd.Directives = directives(group)

		pos := c.fset.Position(ts.Pos())
		cd.File, cd.Line = pos.Filename, pos.Line

		switch t := ts.Type.(type) {
		case *ast.StructType:
			cd.IsStruct = true
			c.handleStructFields(cd, t)
		case *ast.InterfaceType:
			c.handleInterface(cd, named, t)
		}

		c.classes = append(c.classes, cd)
		c.byName[cd.Name] = cd
		c.named[cd] = named
	}
}

func (c *converter) handleStructFields(cd *ClassDoc, st *ast.StructType) {
	for _, f := range st.Fields.List {
		doc := strings.TrimSpace(f.Doc.Text())
		if doc == "" {
			doc = strings.TrimSpace(f.Comment.Text())
		}

		if len(f.Names) > 0 {
			for _, n := range f.Names {
				if doc != "" {
					cd.FieldDocs[n.Name] = doc
				}
			}
			continue
		}

		tv, ok := c.info.Types[f.Type]
		if !ok {
			continue
		}
		named := namedOf(tv.Type)
		if named == nil || named.Obj().Pkg() == nil {
			continue
		}
		if doc != "" {
			cd.FieldDocs[named.Obj().Name()] = doc
		}

		ref := TypeRef{PkgPath: named.Obj().Pkg().Path(), Name: named.Obj().Name()}
		if _, isStruct := named.Underlying().(*types.Struct); isStruct && cd.parentRef == nil {
			cd.parentRef = &ref
			continue
		}
		cd.traitRefs = append(cd.traitRefs, ref)
	}
}

func (c *converter) handleInterface(cd *ClassDoc, named *types.Named, it *ast.InterfaceType) {
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		return
	}

	for _, f := range it.Methods.List {
		if len(f.Names) == 0 {
			continue
		}
		doc := strings.TrimSpace(f.Doc.Text())
		if doc == "" {
			doc = strings.TrimSpace(f.Comment.Text())
		}
		for _, n := range f.Names {
			fn, ok := c.info.Defs[n].(*types.Func)
			if !ok {
				continue
			}
			cd.AddMethod(c.methodDoc(fn, doc))
		}
	}

	for i := 0; i < iface.NumEmbeddeds(); i++ {
		if emb := namedOf(iface.EmbeddedType(i)); emb != nil && emb.Obj().Pkg() != nil {
			cd.traitRefs = append(cd.traitRefs, TypeRef{PkgPath: emb.Obj().Pkg().Path(), Name: emb.Obj().Name()})
		}
	}

	if iface.NumMethods() > 0 && named.TypeParams().Len() == 0 {
		c.ifaces = append(c.ifaces, named)
	}
}

func (c *converter) handleConstDecl(gd *ast.GenDecl) {
	for _, spec := range gd.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		doc := strings.TrimSpace(vs.Doc.Text())
		if doc == "" {
			doc = strings.TrimSpace(vs.Comment.Text())
		}
		for _, n := range vs.Names {
			obj, ok := c.info.Defs[n].(*types.Const)
			if !ok {
				continue
			}
			named, ok := obj.Type().(*types.Named)
			if !ok || named.Obj().Pkg() != c.pkg {
				continue
			}
			typeName := named.Obj().Name()
			c.pendingConst[typeName] = append(c.pendingConst[typeName], ConstDoc{
				Name:  n.Name,
				Value: obj.Val().ExactString(),
				Doc:   doc,
			})
		}
	}
}

func (c *converter) handleFuncDecl(fd *ast.FuncDecl) {
	if fd.Recv == nil {
		return
	}
	fn, ok := c.info.Defs[fd.Name].(*types.Func)
	if !ok {
		return
	}
	sig := fn.Type().(*types.Signature)
	recv := namedOf(sig.Recv().Type())
	if recv == nil {
		return
	}

	md := c.methodDoc(fn, strings.TrimSpace(fd.Doc.Text()))
	c.methodsByFunc[fn.FullName()] = md
	c.pendingMethod[recv.Obj().Name()] = append(c.pendingMethod[recv.Obj().Name()], md)
}

func (c *converter) attachPending() {
	for typeName, methods := range c.pendingMethod {
		cd, ok := c.byName[typeName]
		if !ok {
			continue
		}
		for _, m := range methods {
			cd.AddMethod(m)
		}
	}
	for typeName, consts := range c.pendingConst {
		if cd, ok := c.byName[typeName]; ok {
			cd.Constants = append(cd.Constants, consts...)
		}
	}
}

// addPromotedMethods copies methods reached through embedded fields
func (c *converter) addPromotedMethods() {
	for _, cd := range c.classes {
		if !cd.IsStruct {
			continue
		}
		named := c.named[cd]
		if named.TypeParams().Len() > 0 {
			continue
		}

		mset := types.NewMethodSet(types.NewPointer(named))
		for i := 0; i < mset.Len(); i++ {
			sel := mset.At(i)
			if len(sel.Index()) < 2 {
				continue
			}
			fn, ok := sel.Obj().(*types.Func)
			if !ok {
				continue
			}
			if _, exists := cd.Methods[fn.Name()]; exists {
				continue
			}

			base, ok := c.methodsByFunc[fn.FullName()]
			if !ok {
				base = c.methodDoc(fn, "")
			}
			promoted := *base
			promoted.Promoted = true
			cd.AddMethod(&promoted)
		}
	}
}

// addInterfaces records the package interfaces *T implements, in declaration order
func (c *converter) addInterfaces() {
	for _, cd := range c.classes {
		named := c.named[cd]
		if _, isIface := named.Underlying().(*types.Interface); isIface || named.TypeParams().Len() > 0 {
			continue
		}
		ptr := types.NewPointer(named)
		for _, iface := range c.ifaces {
			if types.Implements(ptr, iface.Underlying().(*types.Interface)) {
				cd.interfaceRefs = append(cd.interfaceRefs, TypeRef{PkgPath: c.pkg.Path(), Name: iface.Obj().Name()})
			}
		}
	}
}

func (c *converter) methodDoc(fn *types.Func, doc string) *MethodDoc {
	sig := fn.Type().(*types.Signature)
	qual := types.RelativeTo(c.pkg)
	pos := c.fset.Position(fn.Pos())

	md := &MethodDoc{
		Name:     fn.Name(),
		Doc:      doc,
		Params:   tupleString(sig.Params(), sig.Variadic(), qual),
		Results:  resultString(sig.Results(), qual),
		File:     pos.Filename,
		Line:     pos.Line,
		Exported: fn.Exported(),
		Variadic: sig.Variadic(),
	}
	if recv := sig.Recv(); recv != nil {
		_, md.PointerRecv = recv.Type().(*types.Pointer)
	}
	return md
}

func tupleString(t *types.Tuple, variadic bool, qual types.Qualifier) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		v := t.At(i)
		if v.Name() != "" {
			b.WriteString(v.Name())
			b.WriteByte(' ')
		}
		typ := v.Type()
		if variadic && i == t.Len()-1 {
			if s, ok := typ.(*types.Slice); ok {
				b.WriteString("...")
				typ = s.Elem()
			}
		}
		b.WriteString(types.TypeString(typ, qual))
	}
	b.WriteByte(')')
	return b.String()
}

func resultString(t *types.Tuple, qual types.Qualifier) string {
	switch {
	case t.Len() == 0:
		return ""
	case t.Len() == 1 && t.At(0).Name() == "":
		return types.TypeString(t.At(0).Type(), qual)
	default:
		return tupleString(t, false, qual)
	}
}

func namedOf(t types.Type) *types.Named {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	named, _ := t.(*types.Named)
	return named
}

// directives extracts "//name:arg" lines, which CommentGroup.Text drops
func directives(group *ast.CommentGroup) []Directive {
	if group == nil {
		return nil
	}
	var out []Directive
	for _, c := range group.List {
		body, ok := strings.CutPrefix(c.Text, "//")
		if !ok || !isDirective(body) {
			continue
		}
		name, arg, _ := strings.Cut(body, ":")
		out = append(out, Directive{Name: name, Arg: strings.TrimSpace(arg)})
	}
	return out
}

func isDirective(s string) bool {
	colon := strings.Index(s, ":")
	if colon <= 0 || colon+1 >= len(s) {
		return false
	}
	for i := 0; i <= colon+1; i++ {
		if i == colon {
			continue
		}
		b := s[i]
		if !('a' <= b && b <= 'z' || '0' <= b && b <= '9') {
			return false
		}
	}
	return true
}
