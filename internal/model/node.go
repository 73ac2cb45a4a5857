package model

import "strings"

// Kind classifies what a node shows
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindResource
	KindArray
	KindClosure
	KindObject
	KindRecursion
	KindGroup
	KindMethod
	KindConstant
	KindError
	KindFrame
	KindInfo
)

var kindNames = map[Kind]string{
	KindNil:       "nil",
	KindBool:      "bool",
	KindInt:       "int",
	KindFloat:     "float",
	KindString:    "string",
	KindResource:  "resource",
	KindArray:     "array",
	KindClosure:   "closure",
	KindObject:    "object",
	KindRecursion: "recursion",
	KindGroup:     "group",
	KindMethod:    "method",
	KindConstant:  "constant",
	KindError:     "error",
	KindFrame:     "frame",
	KindInfo:      "info",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// CodegenType tells the code generator how a node continues the access
// expression of its parent.
type CodegenType int

const (
	// CodegenConcatenate appends connectors and name to the parent expression
	CodegenConcatenate CodegenType = iota
	// CodegenEmpty passes the parent expression through (grouping nodes)
	CodegenEmpty
	// CodegenUnreachableMethod marks a method the call site cannot invoke
	CodegenUnreachableMethod
	// CodegenUnreachableProperty marks a field the call site cannot read
	CodegenUnreachableProperty
	// CodegenStop ends code generation for the node and everything below it
	CodegenStop
	// CodegenAbsolute replaces the parent expression with the connectors and name
	CodegenAbsolute
)

// FirstMarker in a connector stands for the expression of the parent node
const FirstMarker = "{{firstMarker}}"

// KeyValue is one extra information row of a node ("Length", "Declared in", ...)
type KeyValue struct {
	Key   string
	Value string
}

// Node is the rendered unit of an analysis. Nodes mirror the value graph,
// except where a recursion node cuts a cycle.
type Node struct {
	Name    string
	Type    string
	Kind    Kind
	Normal  string
	Preview string

	ConnectorLeft  string
	ConnectorRight string

	HelpID string

	CodegenType    CodegenType
	CodegenAllowed bool
	Source         string
	// TypeAssertion is the dynamic type of a value read through an
	// interface; the generated expression ends in .(TypeAssertion).
	TypeAssertion string

	// DomID is set on the first full expansion of an identity, RecursionTarget
	// on later encounters pointing back at it.
	DomID           string
	RecursionTarget string

	Data     []KeyValue
	Children []*Node
}

// NewNode creates a node with the given name, type tag and kind
func NewNode(name, typeTag string, kind Kind) *Node {
	return &Node{
		Name: name,
		Type: typeTag,
		Kind: kind,
	}
}

// AddChild appends non-nil children
func (n *Node) AddChild(children ...*Node) {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
}

// AddData appends an extra information row; empty values are skipped
func (n *Node) AddData(key, value string) {
	if value == "" {
		return
	}
	n.Data = append(n.Data, KeyValue{Key: key, Value: value})
}

// GetData returns the value of an extra information row
func (n *Node) GetData(key string) (string, bool) {
	for _, kv := range n.Data {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// HasChildren reports whether the node expands
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// IsRecursion reports whether the node points back at an earlier expansion
func (n *Node) IsRecursion() bool {
	return n.RecursionTarget != ""
}

// FindChild returns the first direct child with the given name
func (n *Node) FindChild(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Path follows child names from n and returns the node at the end, or nil
func (n *Node) Path(names ...string) *Node {
	current := n
	for _, name := range names {
		if current = current.FindChild(name); current == nil {
			return nil
		}
	}
	return current
}

// Walk visits n and its descendants depth-first; fn returning false skips the subtree
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Count returns the number of nodes in the tree
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// KindCounts counts nodes per kind
func (n *Node) KindCounts() map[Kind]int {
	counts := make(map[Kind]int)
	n.Walk(func(node *Node, _ int) bool {
		counts[node.Kind]++
		return true
	})
	return counts
}

// Headline is the one-line text shown for a collapsed node
func (n *Node) Headline() string {
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(n.ConnectorLeft, FirstMarker, ""))
	b.WriteString(n.Name)
	b.WriteString(strings.ReplaceAll(n.ConnectorRight, FirstMarker, ""))
	if n.Type != "" {
		b.WriteString(" (")
		b.WriteString(n.Type)
		b.WriteString(")")
	}
	text := n.Preview
	if text == "" {
		text = n.Normal
	}
	if text != "" {
		b.WriteString(" ")
		b.WriteString(text)
	}
	return b.String()
}
