package analyzer

import (
	"go/token"
	"reflect"
	"strings"

	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/internal/registry"
)

// AnalysisHub classifies v and hands it to the matching analyzer. It returns
// nil once the emergency break has tripped.
func (s *Session) AnalysisHub(v reflect.Value, ctx Context) *model.Node {
	if !s.emergency.CheckEmergencyBreak() {
		return nil
	}

	v, declared := unwrapInterface(v)
	if declared != nil && !isNil(v) {
		ctx = assertDynamicType(ctx, v.Type())
	}

	node := s.dispatch(v, ctx, declared)
	if node == nil {
		return nil
	}
	s.decorate(node, ctx)
	return node
}

// dispatch applies the fixed classification order: nil, bool, int, float,
// string, resource, array, closure, object.
func (s *Session) dispatch(v reflect.Value, ctx Context, declared reflect.Type) *model.Node {
	switch {
	case isNil(v):
		name := ""
		if declared != nil {
			name = typeName(declared)
		}
		return s.analyseNil(v, name)
	case v.Kind() == reflect.Bool:
		return s.analyseBool(v)
	case isInt(v.Kind()):
		return s.analyseInt(v)
	case isFloat(v.Kind()):
		return s.analyseFloat(v)
	case v.Kind() == reflect.String:
		return s.analyseString(v)
	case isResource(v.Kind()):
		return s.analyseResource(v)
	case v.Kind() == reflect.Slice, v.Kind() == reflect.Array, v.Kind() == reflect.Map:
		return s.analyseArray(v, ctx)
	case v.Kind() == reflect.Func:
		return s.analyseClosure(v, ctx)
	default:
		return s.analyseObject(v, ctx)
	}
}

// unwrapInterface returns the dynamic value behind v and the outermost
// interface type it was read through, nil when v is not an interface.
func unwrapInterface(v reflect.Value) (reflect.Value, reflect.Type) {
	var declared reflect.Type
	for v.IsValid() && v.Kind() == reflect.Interface {
		if declared == nil {
			declared = v.Type()
		}
		if v.IsNil() {
			break
		}
		v = v.Elem()
	}
	return v, declared
}

// assertDynamicType makes the generated expression of a composite value read
// through an interface end in a type assertion, so its fields and elements
// stay addressable. Types the call site cannot name disable generation.
func assertDynamicType(ctx Context, t reflect.Type) Context {
	switch t.Kind() {
	case reflect.Struct, reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
	default:
		return ctx
	}
	if ctx.CodegenType != model.CodegenConcatenate {
		return ctx
	}
	if !expressible(t) {
		ctx.NoCodegen = true
		return ctx
	}
	ctx.TypeAssertion = strings.ReplaceAll(typeName(t), "interface {}", "any")
	return ctx
}

// expressible reports whether t can be written in a type assertion outside
// the package that declares it.
func expressible(t reflect.Type) bool {
	if t.Name() != "" {
		return t.PkgPath() == "" || token.IsExported(t.Name())
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Chan:
		return expressible(t.Elem())
	case reflect.Map:
		return expressible(t.Key()) && expressible(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() || !expressible(f.Type) {
				return false
			}
		}
	case reflect.Func:
		for i := range t.NumIn() {
			if !expressible(t.In(i)) {
				return false
			}
		}
		for i := range t.NumOut() {
			if !expressible(t.Out(i)) {
				return false
			}
		}
	}
	return true
}

func (s *Session) decorate(node *model.Node, ctx Context) {
	node.Name = ctx.Name
	node.ConnectorLeft = ctx.ConnectorLeft
	node.ConnectorRight = ctx.ConnectorRight
	node.CodegenType = ctx.CodegenType
	node.CodegenAllowed = !ctx.NoCodegen
	node.TypeAssertion = ctx.TypeAssertion
	if ctx.TypePrefix != "" {
		node.Type = ctx.TypePrefix + " " + node.Type
	}
	for _, kv := range ctx.Data {
		node.AddData(kv.Key, kv.Value)
	}
}

// recursionNode points back at the first expansion of an identity
func (s *Session) recursionNode(v reflect.Value, domID string) *model.Node {
	node := model.NewNode("", typeName(v.Type()), model.KindRecursion)
	node.Normal = "recursion"
	node.RecursionTarget = domID
	node.HelpID = "recursion"
	return node
}

// enterHive checks id against the hive. A repeat returns the recursion node,
// a first visit registers the identity and records its DOM id on node. A
// pointee shares its identity with the pointer that was just registered.
func (s *Session) enterHive(v reflect.Value, node *model.Node, ctx Context) *model.Node {
	if ctx.Pointee {
		return nil
	}
	id, ok := identityOf(v)
	if !ok {
		return nil
	}
	if s.hive.IsInHive(id) {
		domID, _ := s.hive.DomIDOf(id)
		return s.recursionNode(v, domID)
	}
	domID := registry.DomID(s.callCount, id)
	s.hive.AddToHive(id, domID)
	node.DomID = domID
	return nil
}

// identityOf returns the runtime identity of values that can take part in a
// cycle. Pointers are keyed by their element type so that *T and an
// addressable T at the same address are one identity. Zero-size values all
// live at the same address and have no identity.
func identityOf(v reflect.Value) (registry.Identity, bool) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || v.Type().Elem().Size() == 0 {
			return registry.Identity{}, false
		}
		return registry.Identity{Addr: v.Pointer(), Type: v.Type().Elem()}, true
	case reflect.Map:
		if v.IsNil() {
			return registry.Identity{}, false
		}
		return registry.Identity{Addr: v.Pointer(), Type: v.Type()}, true
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return registry.Identity{}, false
		}
		return registry.Identity{Addr: v.Pointer(), Type: v.Type(), Len: v.Len()}, true
	case reflect.Struct, reflect.Array:
		if !v.CanAddr() || v.Type().Size() == 0 {
			return registry.Identity{}, false
		}
		return registry.Identity{Addr: v.UnsafeAddr(), Type: v.Type()}, true
	}
	return registry.Identity{}, false
}

// nestingTooDeep marks node as cut off by the nesting limit
func nestingTooDeep(node *model.Node) *model.Node {
	node.AddData("Nesting", "maximum nesting level reached")
	node.HelpID = "maxNesting"
	return node
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan,
		reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	}
	return false
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func isResource(k reflect.Kind) bool {
	return k == reflect.Chan || k == reflect.UnsafePointer || k == reflect.Uintptr
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}
