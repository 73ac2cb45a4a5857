package analyzer

import (
	"reflect"
	"strconv"

	"github.com/mabhi256/vardig/internal/model"
)

// analyseArrayAccess materializes Len/At objects into a slice and analyses
// it as an array with x.At(i) element connectors.
func (s *Session) analyseArrayAccess(obj *object) *model.Node {
	if !obj.caps.ArrayAccess || !s.cfg.AnalyseTraversable || !callable(obj.recv) {
		return nil
	}
	if s.childNestingDenied() {
		return nil
	}

	n, ok := s.callForValue(obj.recv.MethodByName("Len"), "Len")
	if !ok {
		return nil
	}
	length := int(n.Int())
	limit := min(length, s.cfg.IterationLimit)

	at := obj.recv.MethodByName("At")
	items := reflect.MakeSlice(reflect.SliceOf(at.Type().Out(0)), 0, max(limit, 0))
	for i := 0; i < limit; i++ {
		out := CallUntrusted(at, reflect.ValueOf(i))
		if !out.OK() {
			s.logger.Debug("array access failed", "type", typeName(obj.recv.Type()), "index", i, "error", out.Err)
			break
		}
		items = reflect.Append(items, out.Values[0])
	}

	ctx := Context{
		Name:         "Array access",
		TypePrefix:   "array access",
		CodegenType:  model.CodegenEmpty,
		ElementLeft:  ".At(",
		ElementRight: ")",
	}
	if length > items.Len() {
		ctx.Data = append(ctx.Data, truncatedRow(items.Len(), length))
	}
	return s.AnalysisHub(items, ctx)
}

// analyseTraversable fetches iterators through the configured methods and
// analyses what they yield.
func (s *Session) analyseTraversable(obj *object) []*model.Node {
	if !s.cfg.AnalyseTraversable || !callable(obj.recv) || s.childNestingDenied() {
		return nil
	}

	var nodes []*model.Node
	for _, name := range obj.caps.Iterators {
		value, ok := s.callForValue(obj.recv.MethodByName(name), name)
		if !ok || isNil(value) {
			continue
		}
		kind, _, _ := seqTypeOf(value.Type())
		collector := "slices.Collect("
		if kind == seq2 {
			collector = "maps.Collect("
		}
		nodes = append(nodes, s.iterateSeq(value, Context{
			Name:           name,
			ConnectorLeft:  collector + model.FirstMarker + ".",
			ConnectorRight: "())",
			TypePrefix:     "traversable",
		}))
	}
	return nodes
}

// iterateSeq materializes an iter.Seq or iter.Seq2 value and re-enters
// array analysis on the result.
func (s *Session) iterateSeq(seq reflect.Value, ctx Context) *model.Node {
	if s.childNestingDenied() {
		return nil
	}
	items, truncated, err := s.collectSeq(seq)
	if err != nil {
		s.logger.Debug("iteration failed", "type", typeName(seq.Type()), "error", err)
		return nil
	}
	if !items.IsValid() {
		return nil
	}
	if items.Kind() == reflect.Slice {
		if kind, _, _ := seqTypeOf(seq.Type()); kind == seq2 {
			// keys were not comparable, only values were kept
			ctx.NoCodegen = true
		}
	}
	if truncated {
		ctx.Data = append(ctx.Data, model.KeyValue{
			Key:   "Truncated",
			Value: "stopped after " + strconv.Itoa(s.cfg.IterationLimit) + " items",
		})
	}
	return s.AnalysisHub(items, ctx)
}

// collectSeq gathers at most iteration_limit items. Seq2 pairs become a map
// when the key type allows it.
func (s *Session) collectSeq(seq reflect.Value) (reflect.Value, bool, error) {
	kind, keyType, valueType := seqTypeOf(seq.Type())
	limit := s.cfg.IterationLimit

	var result reflect.Value
	truncated := false

	err := Protect(func() {
		switch {
		case kind == seq1:
			out := reflect.MakeSlice(reflect.SliceOf(keyType), 0, 0)
			for item := range seq.Seq() {
				if out.Len() >= limit {
					truncated = true
					break
				}
				out = reflect.Append(out, item)
			}
			result = out

		case kind == seq2 && keyType.Comparable():
			out := reflect.MakeMap(reflect.MapOf(keyType, valueType))
			count := 0
			for k, v := range seq.Seq2() {
				if count >= limit {
					truncated = true
					break
				}
				out.SetMapIndex(k, v)
				count++
			}
			result = out

		case kind == seq2:
			out := reflect.MakeSlice(reflect.SliceOf(valueType), 0, 0)
			for _, v := range seq.Seq2() {
				if out.Len() >= limit {
					truncated = true
					break
				}
				out = reflect.Append(out, v)
			}
			result = out
		}
	})
	return result, truncated, err
}

// childNestingDenied reports whether a value one level below the current
// one would be cut off, before any user code runs to produce it.
func (s *Session) childNestingDenied() bool {
	s.emergency.UpOneNestingLevel()
	defer s.emergency.DownOneNestingLevel()
	return s.emergency.CheckNesting()
}

func truncatedRow(shown, total int) model.KeyValue {
	return model.KeyValue{
		Key:   "Truncated",
		Value: "showing " + strconv.Itoa(shown) + " of " + strconv.Itoa(total),
	}
}
