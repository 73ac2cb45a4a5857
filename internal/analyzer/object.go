package analyzer

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mabhi256/vardig/internal/comment"
	"github.com/mabhi256/vardig/internal/model"
)

// object bundles what the object analyzers need about one struct value
type object struct {
	node  *model.Node
	value reflect.Value // the struct itself
	recv  reflect.Value // method receiver, a pointer when one is available
	level int
	class *comment.ClassDoc
	caps  Capabilities
}

func (s *Session) analyseObject(v reflect.Value, ctx Context) *model.Node {
	node := model.NewNode("", typeName(v.Type()), model.KindObject)
	node.HelpID = "object"

	s.emergency.UpOneNestingLevel()
	defer s.emergency.DownOneNestingLevel()

	if s.emergency.CheckNesting() {
		return nestingTooDeep(node)
	}
	if rec := s.enterHive(v, node, ctx); rec != nil {
		return rec
	}

	if v.Kind() == reflect.Pointer && v.Elem().Kind() != reflect.Struct {
		return s.analysePointer(node, v)
	}

	st, recv := structAndReceiver(v)
	obj := &object{
		node:  node,
		value: st,
		recv:  recv,
		level: s.emergency.Level(),
		class: s.classOf(st.Type()),
		caps:  probeCapabilities(recv, s.cfg.IteratorMethodList()),
	}

	if v.Kind() == reflect.Pointer {
		node.Normal = fmt.Sprintf("%#x", v.Pointer())
	}

	node.AddChild(s.analyseMeta(obj))
	node.AddChild(s.analyseProperties(obj)...)
	node.AddChild(s.analyseGetters(obj))
	s.analyseCountable(obj)
	node.AddChild(s.analyseArrayAccess(obj))
	node.AddChild(s.analyseTraversable(obj)...)
	node.AddChild(s.constantGroup(st.Type()))
	node.AddChild(s.analyseMethods(obj))
	node.AddChild(s.analyseDebugMethods(obj))
	node.AddChild(s.analyseErrorChain(obj))

	return node
}

// analysePointer renders a pointer to a non-struct value with one
// dereferenced child.
func (s *Session) analysePointer(node *model.Node, v reflect.Value) *model.Node {
	node.Normal = fmt.Sprintf("%#x", v.Pointer())
	node.AddChild(s.AnalysisHub(v.Elem(), Context{
		ConnectorLeft:  "(*" + model.FirstMarker,
		ConnectorRight: ")",
		Pointee:        v.Elem().Kind() == reflect.Array,
	}))
	return node
}

// structAndReceiver returns the struct behind v and the receiver to use for
// method sets. Non-addressable structs are copied so pointer methods are
// available, unless they were read through an unexported field.
func structAndReceiver(v reflect.Value) (reflect.Value, reflect.Value) {
	if v.Kind() == reflect.Pointer {
		return v.Elem(), v
	}
	if v.CanAddr() {
		return v, v.Addr()
	}
	if v.CanInterface() {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return v, p
	}
	return v, v
}

// classOf looks up the documentation model of a named type
func (s *Session) classOf(t reflect.Type) *comment.ClassDoc {
	if s.index == nil {
		return nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return nil
	}
	name, _, _ := strings.Cut(t.Name(), "[")
	return s.index.Class(t.PkgPath(), name)
}

// groupNode creates a grouping node that passes the parent expression through
func groupNode(name, helpID string) *model.Node {
	node := model.NewNode(name, "", model.KindGroup)
	node.HelpID = helpID
	node.CodegenType = model.CodegenEmpty
	node.CodegenAllowed = true
	return node
}

// metaRecursion turns group into a pointer at an earlier rendering of the same view
func metaRecursion(group *model.Node, key string) *model.Node {
	group.Kind = model.KindRecursion
	group.Normal = "already shown"
	group.RecursionTarget = key
	return group
}

func (s *Session) analyseMeta(obj *object) *model.Node {
	t := obj.value.Type()

	meta := model.NewNode("Meta", "type internals", model.KindInfo)
	meta.HelpID = "meta"
	meta.CodegenType = model.CodegenStop
	meta.CodegenAllowed = true

	meta.AddData("Type", typeName(t))
	meta.AddData("Package", t.PkgPath())
	meta.AddData("Size", strconv.FormatUint(uint64(t.Size()), 10)+" bytes")
	meta.AddData("Fields", strconv.Itoa(t.NumField()))

	var caps []string
	if obj.caps.Countable {
		caps = append(caps, "countable")
	}
	if obj.caps.ArrayAccess {
		caps = append(caps, "array access")
	}
	if len(obj.caps.Iterators) > 0 {
		caps = append(caps, "traversable")
	}
	if obj.caps.Error {
		caps = append(caps, "error")
	}
	if obj.caps.Dynamic {
		caps = append(caps, "dynamic fields")
	}
	meta.AddData("Capabilities", strings.Join(caps, ", "))

	if class := obj.class; class != nil {
		meta.AddData("Comment", s.resolver.TypeComment(class))
		if class.File != "" {
			meta.AddData("Declared in", class.File+":"+strconv.Itoa(class.Line))
		}
		meta.AddData("Attributes", strings.Join(s.resolver.TypeAttributes(class), ", "))
		meta.AddData("Interfaces", joinClassNames(class.Interfaces))

		var embeds []*comment.ClassDoc
		if class.Parent != nil {
			embeds = append(embeds, class.Parent)
		}
		embeds = append(embeds, class.Traits...)
		meta.AddData("Embeds", joinClassNames(embeds))
	}

	return meta
}

func joinClassNames(classes []*comment.ClassDoc) string {
	names := make([]string, 0, len(classes))
	for _, c := range classes {
		names = append(names, c.PkgName+"."+c.Name)
	}
	return strings.Join(names, ", ")
}
