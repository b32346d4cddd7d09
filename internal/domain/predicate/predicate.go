// Package predicate defines the boolean expression tree that query front-ends
// build and the compiler translates into native engine queries.
package predicate

import (
	"fmt"
	"strings"
)

// Op identifies the node variant.
type Op int

const (
	OpEqual Op = iota
	OpNotEqual
	OpStartsWith
	OpIsNull
	OpIsNotNull
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
	OpAnd
	OpOr
	OpNot
)

var opNames = [...]string{
	OpEqual:          "==",
	OpNotEqual:       "!=",
	OpStartsWith:     "starts_with",
	OpIsNull:         "is_null",
	OpIsNotNull:      "is_not_null",
	OpLess:           "<",
	OpLessOrEqual:    "<=",
	OpGreater:        ">",
	OpGreaterOrEqual: ">=",
	OpAnd:            "and",
	OpOr:             "or",
	OpNot:            "not",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("op(%d)", int(o))
	}
	return opNames[o]
}

// IsComparison reports whether o is one of < <= > >=.
func (o Op) IsComparison() bool {
	return o >= OpLess && o <= OpGreaterOrEqual
}

// IsLeaf reports whether o references a property rather than child nodes.
func (o Op) IsLeaf() bool { return o < OpAnd }

// Node is one predicate in the tree. Leaves carry Property and Value;
// interior nodes carry Children (exactly one for Not).
type Node struct {
	Op       Op
	Property string
	Value    any
	Children []*Node
}

func leaf(op Op, property string, value any) *Node {
	return &Node{Op: op, Property: property, Value: value}
}

// Eq matches property == value. A nil value means IsNull.
func Eq(property string, value any) *Node { return leaf(OpEqual, property, value) }

// NotEq matches property != value. A nil value means IsNotNull.
func NotEq(property string, value any) *Node { return leaf(OpNotEqual, property, value) }

// StartsWith matches string properties beginning with prefix.
func StartsWith(property, prefix string) *Node { return leaf(OpStartsWith, property, prefix) }

func IsNull(property string) *Node    { return leaf(OpIsNull, property, nil) }
func IsNotNull(property string) *Node { return leaf(OpIsNotNull, property, nil) }

func Lt(property string, value any) *Node { return leaf(OpLess, property, value) }
func Le(property string, value any) *Node { return leaf(OpLessOrEqual, property, value) }
func Gt(property string, value any) *Node { return leaf(OpGreater, property, value) }
func Ge(property string, value any) *Node { return leaf(OpGreaterOrEqual, property, value) }

// And matches when every child matches.
func And(children ...*Node) *Node { return &Node{Op: OpAnd, Children: children} }

// Or matches when at least one child matches.
func Or(children ...*Node) *Node { return &Node{Op: OpOr, Children: children} }

// Not negates child.
func Not(child *Node) *Node { return &Node{Op: OpNot, Children: []*Node{child}} }

// String renders the tree for logs and error messages.
func (n *Node) String() string {
	if n == nil {
		return "<all>"
	}
	switch n.Op {
	case OpIsNull, OpIsNotNull:
		return fmt.Sprintf("%s %s", n.Property, n.Op)
	case OpAnd, OpOr:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " "+n.Op.String()+" ") + ")"
	case OpNot:
		if len(n.Children) != 1 {
			return "not(?)"
		}
		return "not " + n.Children[0].String()
	default:
		return fmt.Sprintf("%s %s %s", n.Property, n.Op, literal(n.Value))
	}
}

func literal(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
