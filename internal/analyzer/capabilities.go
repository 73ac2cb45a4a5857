package analyzer

import "reflect"

// Capabilities describes what an object offers beyond its fields. It is
// decided once, when the object is classified.
type Capabilities struct {
	Countable   bool
	ArrayAccess bool
	Error       bool
	Dynamic     bool

	// Iterators lists methods returning iter.Seq or iter.Seq2
	Iterators []string
}

var (
	errorType   = reflect.TypeFor[error]()
	intType     = reflect.TypeFor[int]()
	dynamicType = reflect.TypeFor[map[string]any]()
)

type seqKind int

const (
	notSeq seqKind = iota
	seq1
	seq2
)

// probeCapabilities inspects the method set of recv's type
func probeCapabilities(recv reflect.Value, iteratorNames []string) Capabilities {
	var caps Capabilities
	if !recv.IsValid() {
		return caps
	}
	t := recv.Type()

	if m, ok := t.MethodByName("Len"); ok && isNullary(m.Type, 1) && m.Type.Out(0) == intType {
		caps.Countable = true
		if at, ok := t.MethodByName("At"); ok && at.Type.NumIn() == 2 && at.Type.In(1) == intType && at.Type.NumOut() == 1 {
			caps.ArrayAccess = true
		}
	}

	caps.Error = t.Implements(errorType)

	if m, ok := t.MethodByName("DynamicFields"); ok && isNullary(m.Type, 1) && m.Type.Out(0) == dynamicType {
		caps.Dynamic = true
	}

	for _, name := range iteratorNames {
		m, ok := t.MethodByName(name)
		if !ok || !isNullary(m.Type, 1) {
			continue
		}
		if kind, _, _ := seqTypeOf(m.Type.Out(0)); kind != notSeq {
			caps.Iterators = append(caps.Iterators, name)
		}
	}

	return caps
}

// isNullary reports whether a method type (receiver included) takes no
// arguments and returns results values.
func isNullary(mt reflect.Type, results int) bool {
	return mt.NumIn() == 1 && mt.NumOut() == results
}

// seqTypeOf recognizes func(yield func(K) bool) and func(yield func(K, V) bool)
func seqTypeOf(t reflect.Type) (seqKind, reflect.Type, reflect.Type) {
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return notSeq, nil, nil
	}
	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return notSeq, nil, nil
	}
	switch yield.NumIn() {
	case 1:
		return seq1, yield.In(0), nil
	case 2:
		return seq2, yield.In(0), yield.In(1)
	}
	return notSeq, nil, nil
}
