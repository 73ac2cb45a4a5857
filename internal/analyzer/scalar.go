package analyzer

import (
	"fmt"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/utils"
)

func (s *Session) analyseNil(v reflect.Value, declared string) *model.Node {
	t := declared
	if v.IsValid() && t == "" {
		t = typeName(v.Type())
	}
	node := model.NewNode("", t, model.KindNil)
	node.Normal = "nil"
	return node
}

func (s *Session) analyseBool(v reflect.Value) *model.Node {
	node := model.NewNode("", typeName(v.Type()), model.KindBool)
	node.Normal = strconv.FormatBool(v.Bool())
	s.addConstants(node, v)
	return node
}

func (s *Session) analyseInt(v reflect.Value) *model.Node {
	node := model.NewNode("", typeName(v.Type()), model.KindInt)
	node.Normal = formatInt(v)
	s.addConstants(node, v)
	return node
}

func (s *Session) analyseFloat(v reflect.Value) *model.Node {
	node := model.NewNode("", typeName(v.Type()), model.KindFloat)
	switch v.Kind() {
	case reflect.Complex64:
		node.Normal = strconv.FormatComplex(v.Complex(), 'g', -1, 64)
	case reflect.Complex128:
		node.Normal = strconv.FormatComplex(v.Complex(), 'g', -1, 128)
	default:
		node.Normal = strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits())
	}
	s.addConstants(node, v)
	return node
}

func (s *Session) analyseString(v reflect.Value) *model.Node {
	str := v.String()
	node := model.NewNode("", typeName(v.Type()), model.KindString)
	node.Normal = strconv.Quote(str)
	node.AddData("Length", strconv.Itoa(len(str)))

	if runes := utf8.RuneCountInString(str); runes != len(str) {
		node.AddData("Characters", strconv.Itoa(runes))
	}
	if !utf8.ValidString(str) {
		node.AddData("Encoding", "invalid UTF-8")
	}
	if preview := s.cfg.StringPreview; preview > 0 && utf8.RuneCountInString(str) > preview {
		node.Preview = strconv.Quote(utils.TruncateString(str, preview))
	}

	s.addConstants(node, v)
	return node
}

func (s *Session) analyseResource(v reflect.Value) *model.Node {
	node := model.NewNode("", typeName(v.Type()), model.KindResource)
	node.HelpID = "resource"

	switch v.Kind() {
	case reflect.Chan:
		node.Normal = fmt.Sprintf("%s %#x", v.Type().ChanDir(), v.Pointer())
		node.AddData("Direction", v.Type().ChanDir().String())
		node.AddData("Element", typeName(v.Type().Elem()))
		node.AddData("Buffered", strconv.Itoa(v.Len()))
		node.AddData("Capacity", strconv.Itoa(v.Cap()))
	case reflect.UnsafePointer:
		node.Normal = fmt.Sprintf("%#x", v.Pointer())
	case reflect.Uintptr:
		node.Normal = fmt.Sprintf("%#x", v.Uint())
	}
	return node
}

func formatInt(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	}
	return strconv.FormatInt(v.Int(), 10)
}

// formatScalar renders basic values without going through Interface, which
// is not allowed on values read from unexported fields.
func formatScalar(v reflect.Value) string {
	switch {
	case !v.IsValid():
		return "nil"
	case v.Kind() == reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case isInt(v.Kind()) || v.Kind() == reflect.Uintptr:
		return formatInt(v)
	case v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits())
	case v.Kind() == reflect.String:
		return strconv.Quote(v.String())
	case v.CanInterface():
		return fmt.Sprintf("%v", v.Interface())
	}
	return typeName(v.Type())
}
