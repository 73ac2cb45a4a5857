package analyzer

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/mabhi256/vardig/internal/codegen"
	"github.com/mabhi256/vardig/internal/model"
)

// analyseGetters calls exported zero-argument methods starting with the
// getter prefix and shows what they return. Failing getters are left out.
func (s *Session) analyseGetters(obj *object) *model.Node {
	if !s.cfg.AnalyseGetter || !callable(obj.recv) {
		return nil
	}
	prefix := s.cfg.GetterPrefix
	if prefix == "" {
		return nil
	}

	group := groupNode("Getter", "getter")
	t := obj.recv.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !strings.HasPrefix(m.Name, prefix) || len(m.Name) == len(prefix) || m.Type.NumIn() != 1 {
			continue
		}
		if s.emergency.Tripped() {
			break
		}

		value, ok := s.callForValue(obj.recv.Method(i), m.Name)
		if !ok {
			continue
		}
		group.AddChild(s.AnalysisHub(value, Context{
			Name:           m.Name,
			ConnectorLeft:  ".",
			ConnectorRight: "()",
			TypePrefix:     "getter",
			CodegenType:    s.codegen.MethodType(codegen.Public, obj.level),
		}))
	}

	if !group.HasChildren() {
		return nil
	}
	return group
}

// analyseDebugMethods calls the configured debug methods that are not on
// the deny list.
func (s *Session) analyseDebugMethods(obj *object) *model.Node {
	if !callable(obj.recv) {
		return nil
	}

	group := groupNode("Debug methods", "debugMethods")
	t := obj.recv.Type()
	recvName := typeName(t)
	for _, name := range s.cfg.DebugMethodList() {
		m, ok := t.MethodByName(name)
		if !ok || m.Type.NumIn() != 1 {
			continue
		}
		if s.cfg.IsDebugMethodDenied(recvName, name) {
			s.logger.Debug("debug method denied", "type", recvName, "method", name)
			continue
		}
		if s.emergency.Tripped() {
			break
		}

		value, ok := s.callForValue(obj.recv.Method(m.Index), name)
		if !ok {
			continue
		}
		group.AddChild(s.AnalysisHub(value, Context{
			Name:           name,
			ConnectorLeft:  ".",
			ConnectorRight: "()",
			TypePrefix:     "debug method",
			CodegenType:    s.codegen.MethodType(codegen.Public, obj.level),
		}))
	}

	if !group.HasChildren() {
		return nil
	}
	return group
}

// analyseCountable records the result of Len on the object node
func (s *Session) analyseCountable(obj *object) {
	if !obj.caps.Countable || !callable(obj.recv) {
		return
	}
	if n, ok := s.callForValue(obj.recv.MethodByName("Len"), "Len"); ok {
		obj.node.AddData("Count", strconv.FormatInt(n.Int(), 10))
	}
}

// callForValue calls a bound method and accepts a single result or a
// (value, error) pair with a nil error.
func (s *Session) callForValue(method reflect.Value, name string) (reflect.Value, bool) {
	out := CallUntrusted(method)
	if !out.OK() {
		s.logger.Debug("untrusted call failed", "method", name, "error", out.Err)
		return reflect.Value{}, false
	}

	switch len(out.Values) {
	case 1:
		return out.Values[0], true
	case 2:
		errValue := out.Values[1]
		if !errValue.Type().Implements(errorType) {
			return reflect.Value{}, false
		}
		if !isNil(errValue) {
			return reflect.Value{}, false
		}
		return out.Values[0], true
	}
	return reflect.Value{}, false
}
