package analyzer

import (
	"reflect"

	"github.com/mabhi256/vardig/internal/comment"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/internal/registry"
)

// constantsOf returns the documentation model of t when it has constants
func (s *Session) constantsOf(t reflect.Type) *comment.ClassDoc {
	if !s.cfg.AnalyseConstants {
		return nil
	}
	class := s.classOf(t)
	if class == nil || len(class.Constants) == 0 {
		return nil
	}
	return class
}

// constantGroup renders the package constants of type t once per call.
// Each constant gets an absolute pkg.Name expression.
func (s *Session) constantGroup(t reflect.Type) *model.Node {
	class := s.constantsOf(t)
	if class == nil {
		return nil
	}

	group := groupNode("Constants", "constants")
	key := registry.MetaKey(s.callCount, "constants", "", class.QualifiedName())
	if s.hive.IsInMetaHive(key) {
		return metaRecursion(group, key)
	}
	s.hive.AddToMetaHive(key)
	group.DomID = key

	for _, c := range class.Constants {
		node := model.NewNode(c.Name, typeName(t), model.KindConstant)
		node.Normal = c.Value
		node.ConnectorLeft = class.PkgName + "."
		node.CodegenType = model.CodegenAbsolute
		node.CodegenAllowed = true
		node.AddData("Comment", c.Doc)
		group.AddChild(node)
	}
	return group
}

// addConstants marks the constant matching a named scalar and lists the
// constants of its type the first time the type is seen.
func (s *Session) addConstants(node *model.Node, v reflect.Value) {
	class := s.constantsOf(v.Type())
	if class == nil {
		return
	}

	current := formatScalar(v)
	for _, c := range class.Constants {
		if c.Value == current {
			node.AddData("Constant", class.PkgName+"."+c.Name)
			break
		}
	}

	if group := s.constantGroup(v.Type()); group != nil && !group.IsRecursion() {
		node.AddChild(group)
	}
}
