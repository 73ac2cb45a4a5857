package analyzer

import (
	"cmp"
	"reflect"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/utils"
)

// element is one entry of an array or mapping with its display key
type element struct {
	key     string
	value   reflect.Value
	codegen bool
	sortKey reflect.Value
}

func (s *Session) analyseArray(v reflect.Value, ctx Context) *model.Node {
	node := model.NewNode("", typeName(v.Type()), model.KindArray)
	node.HelpID = "array"

	n := v.Len()
	node.Normal = strconv.Itoa(n) + " elements"
	node.AddData("Length", strconv.Itoa(n))
	if v.Kind() == reflect.Slice {
		node.AddData("Capacity", strconv.Itoa(v.Cap()))
	}
	if isByteSequence(v) {
		node.AddData("String", bytesPreview(v, s.cfg.StringPreview))
	}

	s.emergency.UpOneNestingLevel()
	defer s.emergency.DownOneNestingLevel()

	if s.emergency.CheckNesting() {
		return nestingTooDeep(node)
	}
	if rec := s.enterHive(v, node, ctx); rec != nil {
		return rec
	}

	if n > s.cfg.ArrayCountLimit {
		s.analyseLargeArray(node, v, ctx)
		return node
	}

	left, right := ctx.elementConnectors()
	for _, el := range elementsOf(v) {
		if s.emergency.Tripped() {
			break
		}
		child := s.AnalysisHub(el.value, Context{
			Name:           el.key,
			ConnectorLeft:  left,
			ConnectorRight: right,
			NoCodegen:      !el.codegen,
		})
		node.AddChild(child)
	}
	return node
}

// analyseLargeArray renders one shallow node per element without descending
func (s *Session) analyseLargeArray(node *model.Node, v reflect.Value, ctx Context) {
	node.AddData("Analysis", "large array, elements are not expanded")
	node.HelpID = "largeArray"

	left, right := ctx.elementConnectors()
	for _, el := range elementsOf(v) {
		if !s.emergency.CheckEmergencyBreak() {
			break
		}
		child := s.shallowNode(el.value)
		child.Name = el.key
		child.ConnectorLeft = left
		child.ConnectorRight = right
		child.CodegenAllowed = el.codegen
		node.AddChild(child)
	}
}

// shallowNode describes a value by kind and size only
func (s *Session) shallowNode(v reflect.Value) *model.Node {
	for v.IsValid() && v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}

	switch {
	case isNil(v):
		return s.analyseNil(v, "")
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
	}

	node := model.NewNode("", typeName(v.Type()), model.KindObject)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		node.Kind = model.KindArray
		node.Normal = strconv.Itoa(v.Len()) + " elements"
	case reflect.Func:
		node.Kind = model.KindClosure
		node.Normal = typeName(v.Type())
	default:
		node.Normal = typeName(v.Type())
	}
	return node
}

// elementsOf lists the entries of a slice, array or map. Map entries are
// sorted by key and the globals marker is skipped.
func elementsOf(v reflect.Value) []element {
	if v.Kind() != reflect.Map {
		out := make([]element, v.Len())
		for i := range out {
			out[i] = element{key: strconv.Itoa(i), value: v.Index(i), codegen: true}
		}
		return out
	}

	out := make([]element, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		for k.Kind() == reflect.Interface && !k.IsNil() {
			k = k.Elem()
		}
		if k.Kind() == reflect.String && k.String() == GlobalsMarker {
			continue
		}
		out = append(out, element{
			key:     formatScalar(k),
			value:   iter.Value(),
			codegen: isBasicKey(k),
			sortKey: k,
		})
	}
	slices.SortFunc(out, compareElements)
	return out
}

func compareElements(a, b element) int {
	ka, kb := a.sortKey, b.sortKey
	if ka.IsValid() && kb.IsValid() && ka.Kind() == kb.Kind() {
		switch {
		case ka.Kind() == reflect.String:
			return cmp.Compare(ka.String(), kb.String())
		case isSigned(ka.Kind()):
			return cmp.Compare(ka.Int(), kb.Int())
		case isInt(ka.Kind()) || ka.Kind() == reflect.Uintptr:
			return cmp.Compare(ka.Uint(), kb.Uint())
		case ka.Kind() == reflect.Float32 || ka.Kind() == reflect.Float64:
			return cmp.Compare(ka.Float(), kb.Float())
		}
	}
	return cmp.Compare(a.key, b.key)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

// isBasicKey reports whether a map key renders as a valid Go literal
func isBasicKey(k reflect.Value) bool {
	switch {
	case !k.IsValid():
		return false
	case k.Kind() == reflect.Bool, k.Kind() == reflect.String, isInt(k.Kind()):
		return true
	case k.Kind() == reflect.Float32, k.Kind() == reflect.Float64:
		return true
	}
	return false
}

func isByteSequence(v reflect.Value) bool {
	return (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && v.Type().Elem().Kind() == reflect.Uint8
}

func bytesPreview(v reflect.Value, limit int) string {
	b := make([]byte, v.Len())
	for i := range b {
		b[i] = byte(v.Index(i).Uint())
	}
	if !utf8.Valid(b) {
		return "(binary)"
	}
	str := string(b)
	if limit > 0 {
		str = utils.TruncateString(str, limit)
	}
	return strconv.Quote(str)
}
