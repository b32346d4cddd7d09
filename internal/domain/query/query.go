// Package query is the engine-neutral native query tree produced by the
// compiler. Values are already encoded by the field codec; engines only map
// node kinds onto their own primitives.
package query

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/searchmap/internal/domain/field"
)

// Kind identifies the native primitive.
type Kind int

const (
	KindMatchAll Kind = iota
	KindMatchNone
	KindTerm
	KindPhrase
	KindPrefix
	KindRange
	KindExists
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindMatchAll:
		return "match_all"
	case KindMatchNone:
		return "match_none"
	case KindTerm:
		return "term"
	case KindPhrase:
		return "phrase"
	case KindPrefix:
		return "prefix"
	case KindRange:
		return "range"
	case KindExists:
		return "exists"
	case KindBool:
		return "bool"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Node is a native query primitive or boolean composite.
//
// Phrase nodes carry the raw text and the indexing mode of the field, so the
// engine tokenizes it with the analyzer the field was indexed with. Range
// bounds are encoded values; an empty bound is open.
type Node struct {
	Kind     Kind
	Field    string
	Value    string
	Indexing field.Indexing

	Min, Max                   string
	MinInclusive, MaxInclusive bool

	Must    []*Node
	Should  []*Node
	MustNot []*Node
}

func MatchAll() *Node  { return &Node{Kind: KindMatchAll} }
func MatchNone() *Node { return &Node{Kind: KindMatchNone} }

// Term matches one exact indexed value.
func Term(f, value string) *Node { return &Node{Kind: KindTerm, Field: f, Value: value} }

// Phrase matches the ordered tokens of text.
func Phrase(f, text string, indexing field.Indexing) *Node {
	return &Node{Kind: KindPhrase, Field: f, Value: text, Indexing: indexing}
}

// Prefix matches indexed values starting with prefix.
func Prefix(f, prefix string) *Node { return &Node{Kind: KindPrefix, Field: f, Value: prefix} }

// Range matches encoded values between min and max.
func Range(f, min, max string, minInclusive, maxInclusive bool) *Node {
	return &Node{Kind: KindRange, Field: f, Min: min, Max: max, MinInclusive: minInclusive, MaxInclusive: maxInclusive}
}

// Exists matches documents with at least one value for f.
func Exists(f string) *Node { return &Node{Kind: KindExists, Field: f} }

// Bool composes clauses: every Must, at least one Should when any is given,
// and no MustNot.
func Bool(must, should, mustNot []*Node) *Node {
	return &Node{Kind: KindBool, Must: must, Should: should, MustNot: mustNot}
}

// String renders the tree in a Lucene-like syntax for logs and tests.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("*:*")
		return
	}
	switch n.Kind {
	case KindMatchAll:
		sb.WriteString("*:*")
	case KindMatchNone:
		sb.WriteString("-*:*")
	case KindTerm:
		sb.WriteString(n.Field + ":" + strconv.Quote(n.Value))
	case KindPhrase:
		sb.WriteString(n.Field + ":\"" + n.Value + "\"")
	case KindPrefix:
		sb.WriteString(n.Field + ":" + strconv.Quote(n.Value) + "*")
	case KindRange:
		sb.WriteString(n.Field + ":")
		sb.WriteByte(bracket(n.MinInclusive, '[', '{'))
		sb.WriteString(bound(n.Min))
		sb.WriteString(" TO ")
		sb.WriteString(bound(n.Max))
		sb.WriteByte(bracket(n.MaxInclusive, ']', '}'))
	case KindExists:
		sb.WriteString("_exists_:" + n.Field)
	case KindBool:
		sb.WriteByte('(')
		first := true
		clause := func(prefix string, nodes []*Node) {
			for _, c := range nodes {
				if !first {
					sb.WriteByte(' ')
				}
				first = false
				sb.WriteString(prefix)
				c.write(sb)
			}
		}
		clause("+", n.Must)
		clause("", n.Should)
		clause("-", n.MustNot)
		sb.WriteByte(')')
	default:
		sb.WriteString(n.Kind.String())
	}
}

func bracket(inclusive bool, in, ex byte) byte {
	if inclusive {
		return in
	}
	return ex
}

func bound(v string) string {
	if v == "" {
		return "*"
	}
	return v
}
