// Package codegen rebuilds Go expressions that reach a displayed value from
// the variable the dump was called with.
package codegen

import (
	"strings"

	"github.com/mabhi256/vardig/internal/model"
)

const (
	// UnreachableMarker replaces expressions the call site cannot evaluate
	UnreachableMarker = ". . ."
	// StopMarker ends generation below nodes without an expression
	StopMarker = ";stop;"
	// FirstMarker in a connector is replaced by the parent expression
	// instead of appending to it, e.g. "(*" + FirstMarker + ")".
	FirstMarker = model.FirstMarker
	// UnknownScope is the variable name used when the call site is unknown
	UnknownScope = ". . ."
)

// Visibility tiers of fields and methods
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "public"
	}
}

// Codegen decides which nodes get a source expression and builds it
type Codegen struct {
	scope     string
	selfToken string
	allowed   bool
}

// New creates a code generator with generation disabled until SetScope
func New() *Codegen {
	return &Codegen{scope: UnknownScope}
}

// SetScope records the originating variable expression of the dump call and
// the receiver name of the method the call was made from. Generation is
// allowed once the originating expression is known.
func (c *Codegen) SetScope(scope, selfToken string) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		scope = UnknownScope
	}
	c.scope = scope
	c.selfToken = selfToken
	c.allowed = scope != UnknownScope
}

// Scope returns the originating variable expression
func (c *Codegen) Scope() string {
	return c.scope
}

// Allowed reports whether any source is generated in this call
func (c *Codegen) Allowed() bool {
	return c.allowed
}

// IsSelfScope reports whether the dump was called on the method receiver
func (c *Codegen) IsSelfScope() bool {
	return c.selfToken != "" && c.scope == c.selfToken
}

// IsInScope reports whether non-public members are reachable at level.
// Only the receiver itself and its direct members qualify.
func (c *Codegen) IsInScope(level int) bool {
	return c.IsSelfScope() && level <= 1
}

// PropertyType classifies a field node
func (c *Codegen) PropertyType(vis Visibility, level int) model.CodegenType {
	if c.reachable(vis, level) {
		return model.CodegenConcatenate
	}
	return model.CodegenUnreachableProperty
}

// MethodType classifies a method call node
func (c *Codegen) MethodType(vis Visibility, level int) model.CodegenType {
	if c.reachable(vis, level) {
		return model.CodegenConcatenate
	}
	return model.CodegenUnreachableMethod
}

func (c *Codegen) reachable(vis Visibility, level int) bool {
	return vis == Public || level == 0 || c.IsInScope(level)
}

// Apply fills Source on root and its descendants
func (c *Codegen) Apply(root *model.Node) {
	if root == nil {
		return
	}
	c.apply(root, "", true)
}

func (c *Codegen) apply(node *model.Node, parentExpr string, isRoot bool) {
	expr := ""
	if isRoot {
		expr = c.generateRoot(node)
	} else {
		expr = c.Generate(parentExpr, node)
	}
	node.Source = publicSource(expr)

	for _, child := range node.Children {
		c.apply(child, expr, false)
	}
}

func (c *Codegen) generateRoot(node *model.Node) string {
	if !c.allowed || !node.CodegenAllowed {
		return ""
	}
	if node.CodegenType == model.CodegenStop {
		return StopMarker
	}
	return c.scope
}

// Generate builds the expression of node given the expression of its parent.
// Once a parent is unreachable or stopped, every descendant stays that way.
func (c *Codegen) Generate(parentExpr string, node *model.Node) string {
	if !c.allowed || !node.CodegenAllowed {
		return ""
	}

	switch parentExpr {
	case "":
		return ""
	case StopMarker, UnreachableMarker:
		return parentExpr
	}

	switch node.CodegenType {
	case model.CodegenStop:
		return StopMarker
	case model.CodegenUnreachableMethod, model.CodegenUnreachableProperty:
		return UnreachableMarker
	case model.CodegenEmpty:
		return parentExpr
	}

	accessor := node.ConnectorLeft + node.Name + node.ConnectorRight
	var expr string
	switch {
	case node.CodegenType == model.CodegenAbsolute, strings.Contains(accessor, FirstMarker):
		expr = strings.ReplaceAll(accessor, FirstMarker, parentExpr)
	default:
		expr = parentExpr + accessor
	}
	if node.TypeAssertion != "" {
		expr += ".(" + node.TypeAssertion + ")"
	}
	return expr
}

// publicSource maps internal markers to what the user sees
func publicSource(expr string) string {
	if expr == StopMarker {
		return ""
	}
	return expr
}

// Reachable reports whether a generated expression can be used as is
func Reachable(source string) bool {
	return source != "" && source != UnreachableMarker
}
