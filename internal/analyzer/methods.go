package analyzer

import (
	"reflect"
	"sort"
	"strings"

	"github.com/mabhi256/vardig/internal/codegen"
	"github.com/mabhi256/vardig/internal/comment"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/internal/registry"
)

type methodEntry struct {
	name        string
	vis         codegen.Visibility
	params      string
	results     string
	numParams   int
	pointerRecv bool
	promoted    bool
	variadic    bool
	declaredIn  string
}

// analyseMethods lists the methods of obj. Exported methods come from the
// method set, unexported ones from the source index. The same type with the
// same visibility set is rendered once per call.
func (s *Session) analyseMethods(obj *object) *model.Node {
	if !s.cfg.AnalyseMethods {
		return nil
	}

	inScope := s.codegen.IsInScope(obj.level)
	withProtected := s.cfg.AnalyseProtectedMethods || inScope
	withPrivate := s.cfg.AnalysePrivateMethods || inScope

	flags := "public"
	if withProtected {
		flags += "+protected"
	}
	if withPrivate {
		flags += "+private"
	}

	group := groupNode("Methods", "methods")
	key := registry.MetaKey(s.callCount, "methods", flags, typeName(obj.value.Type()))
	if s.hive.IsInMetaHive(key) {
		return metaRecursion(group, key)
	}

	entries := s.collectMethods(obj, withProtected, withPrivate)
	if len(entries) == 0 {
		return nil
	}
	s.hive.AddToMetaHive(key)
	group.DomID = key

	for _, e := range entries {
		group.AddChild(s.methodNode(obj, e))
	}
	return group
}

func (s *Session) collectMethods(obj *object, withProtected, withPrivate bool) []methodEntry {
	valueType := obj.value.Type()
	ptrType := reflect.PointerTo(valueType)

	byName := map[string]methodEntry{}
	for i := 0; i < ptrType.NumMethod(); i++ {
		m := ptrType.Method(i)
		_, onValue := valueType.MethodByName(m.Name)
		params, results := signatureParts(m.Type, 1)
		byName[m.Name] = methodEntry{
			name:        m.Name,
			vis:         codegen.Public,
			params:      params,
			results:     results,
			numParams:   m.Type.NumIn() - 1,
			pointerRecv: !onValue,
			variadic:    m.Type.IsVariadic(),
		}
	}

	if obj.class != nil {
		for _, md := range obj.class.SortedMethods() {
			if md.Exported {
				if e, ok := byName[md.Name]; ok {
					byName[md.Name] = mergeDoc(e, md)
				}
				continue
			}

			vis := codegen.Private
			if md.Promoted {
				vis = codegen.Protected
			}
			if vis == codegen.Protected && !withProtected || vis == codegen.Private && !withPrivate {
				continue
			}
			e := methodEntry{
				name:        md.Name,
				vis:         vis,
				numParams:   strings.Count(md.Params, ",") + 1,
				pointerRecv: md.PointerRecv,
				variadic:    md.Variadic,
			}
			if md.Params == "()" {
				e.numParams = 0
			}
			byName[md.Name] = mergeDoc(e, md)
		}
	}

	entries := make([]methodEntry, 0, len(byName))
	for _, e := range byName {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries
}

// mergeDoc takes parameter names, position and promotion from source
func mergeDoc(e methodEntry, md *comment.MethodDoc) methodEntry {
	e.params = md.Params
	e.results = md.Results
	e.promoted = md.Promoted
	e.declaredIn = md.DeclaredIn()
	return e
}

func (s *Session) methodNode(obj *object, e methodEntry) *model.Node {
	node := model.NewNode(e.name, e.vis.String()+" method", model.KindMethod)
	node.HelpID = "method"
	node.ConnectorLeft = "."
	node.ConnectorRight = "()"
	node.CodegenType = s.codegen.MethodType(e.vis, obj.level)
	node.CodegenAllowed = e.numParams == 0

	node.Normal = "func" + e.params
	if e.results != "" {
		node.Normal += " " + e.results
	}

	if obj.class != nil {
		node.AddData("Comment", s.resolver.MethodComment(obj.class, e.name))
	}
	node.AddData("Declared in", e.declaredIn)
	node.AddData("Parameters", e.params)
	node.AddData("Results", e.results)
	node.AddData("Modifiers", modifiers(e))
	return node
}

// modifiers lists visibility, pointer receiver, promoted and variadic in that order
func modifiers(e methodEntry) string {
	mods := []string{e.vis.String()}
	if e.pointerRecv {
		mods = append(mods, "pointer receiver")
	}
	if e.promoted {
		mods = append(mods, "promoted")
	}
	if e.variadic {
		mods = append(mods, "variadic")
	}
	return strings.Join(mods, " ")
}

// signatureParts formats parameters and results of a func type, skipping
// the first skip inputs (the receiver of method types).
func signatureParts(t reflect.Type, skip int) (string, string) {
	var params []string
	for i := skip; i < t.NumIn(); i++ {
		in := t.In(i)
		if t.IsVariadic() && i == t.NumIn()-1 {
			params = append(params, "..."+typeName(in.Elem()))
			continue
		}
		params = append(params, typeName(in))
	}

	var results []string
	for i := 0; i < t.NumOut(); i++ {
		results = append(results, typeName(t.Out(i)))
	}

	res := strings.Join(results, ", ")
	if len(results) > 1 {
		res = "(" + res + ")"
	}
	return "(" + strings.Join(params, ", ") + ")", res
}
