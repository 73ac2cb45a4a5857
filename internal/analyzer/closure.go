package analyzer

import (
	"reflect"
	"runtime"
	"strconv"

	"github.com/mabhi256/vardig/internal/model"
)

func (s *Session) analyseClosure(v reflect.Value, ctx Context) *model.Node {
	t := v.Type()
	node := model.NewNode("", typeName(t), model.KindClosure)
	node.HelpID = "closure"
	node.Normal = typeName(t)

	if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
		node.AddData("Name", fn.Name())
		file, line := fn.FileLine(fn.Entry())
		if file != "" {
			node.AddData("Declared in", file+":"+strconv.Itoa(line))
		}
	}

	params, results := signatureParts(t, 0)
	node.AddData("Parameters", params)
	node.AddData("Results", results)
	if t.IsVariadic() {
		node.AddData("Variadic", "true")
	}

	if !s.cfg.AnalyseTraversable || !callable(v) {
		return node
	}
	if kind, _, _ := seqTypeOf(t); kind != notSeq {
		collector := "slices.Collect("
		if kind == seq2 {
			collector = "maps.Collect("
		}
		node.AddChild(s.iterateSeq(v, Context{
			ConnectorLeft: collector + model.FirstMarker + ")",
			TypePrefix:    "traversable",
		}))
	}
	return node
}
