package analyzer

import (
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/mabhi256/vardig/internal/codegen"
	"github.com/mabhi256/vardig/internal/model"
)

type property struct {
	name    string
	value   reflect.Value
	vis     codegen.Visibility
	field   *reflect.StructField
	dynamic bool
}

// analyseProperties renders the fields of obj, public first, then protected
// and private, each tier sorted by name. Dynamic fields join the public tier.
func (s *Session) analyseProperties(obj *object) []*model.Node {
	inScope := s.codegen.IsInScope(obj.level)
	withProtected := s.cfg.AnalyseProtected || inScope
	withPrivate := s.cfg.AnalysePrivate || inScope

	tiers := map[codegen.Visibility][]property{}
	for _, f := range reflect.VisibleFields(obj.value.Type()) {
		if f.Anonymous && isStructLike(f.Type) {
			continue
		}
		vis := fieldVisibility(f)
		if vis == codegen.Protected && !withProtected || vis == codegen.Private && !withPrivate {
			continue
		}
		fv, err := obj.value.FieldByIndexErr(f.Index)
		if err != nil {
			// promoted through a nil embedded pointer
			continue
		}
		tiers[vis] = append(tiers[vis], property{name: f.Name, value: fv, vis: vis, field: &f})
	}
	tiers[codegen.Public] = append(tiers[codegen.Public], s.dynamicProperties(obj)...)

	var nodes []*model.Node
	for _, vis := range []codegen.Visibility{codegen.Public, codegen.Protected, codegen.Private} {
		props := tiers[vis]
		sort.SliceStable(props, func(i, j int) bool { return props[i].name < props[j].name })
		for _, p := range props {
			if s.emergency.Tripped() {
				return nodes
			}
			nodes = append(nodes, s.propertyNode(obj, p))
		}
	}
	return nodes
}

func (s *Session) propertyNode(obj *object, p property) *model.Node {
	ctx := Context{
		Name:          p.name,
		ConnectorLeft: ".",
		TypePrefix:    p.vis.String(),
		CodegenType:   s.codegen.PropertyType(p.vis, obj.level),
	}

	if p.dynamic {
		ctx.Name = strconv.Quote(p.name)
		ctx.ConnectorLeft = ".DynamicFields()["
		ctx.ConnectorRight = "]"
		ctx.TypePrefix = "dynamic"
	}

	if f := p.field; f != nil {
		if def, ok := f.Tag.Lookup("default"); ok && p.value.IsZero() {
			ctx.Data = append(ctx.Data, model.KeyValue{Key: "Default", Value: def})
		}
		if attrs := s.resolver.Attributes(f.Tag); len(attrs) > 0 {
			ctx.Data = append(ctx.Data, model.KeyValue{Key: "Attributes", Value: strings.Join(attrs, ", ")})
		}
		if obj.class != nil {
			if doc := obj.class.FieldDocs[f.Name]; doc != "" {
				ctx.Data = append(ctx.Data, model.KeyValue{Key: "Comment", Value: doc})
			}
		}
	}

	return s.AnalysisHub(p.value, ctx)
}

// dynamicProperties reads the values a type reports through DynamicFields
func (s *Session) dynamicProperties(obj *object) []property {
	if !obj.caps.Dynamic || !callable(obj.recv) {
		return nil
	}

	out := CallUntrusted(obj.recv.MethodByName("DynamicFields"))
	if !out.OK() {
		s.logger.Debug("dynamic fields failed", "type", typeName(obj.recv.Type()), "error", out.Err)
		return nil
	}
	fields := out.Values[0]
	if fields.IsNil() {
		return nil
	}

	var props []property
	iter := fields.MapRange()
	for iter.Next() {
		props = append(props, property{
			name:    iter.Key().String(),
			value:   iter.Value(),
			vis:     codegen.Public,
			dynamic: true,
		})
	}
	return props
}

// fieldVisibility maps Go export rules onto the three tiers. Unexported
// fields promoted from an embedded struct count as protected.
func fieldVisibility(f reflect.StructField) codegen.Visibility {
	switch {
	case f.IsExported():
		return codegen.Public
	case len(f.Index) > 1:
		return codegen.Protected
	default:
		return codegen.Private
	}
}

func isStructLike(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
