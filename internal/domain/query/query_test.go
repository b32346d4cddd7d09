package query

import (
	"testing"

	"github.com/kailas-cloud/searchmap/internal/domain/field"
)

func TestNode_String(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"nil", nil, "*:*"},
		{"match none", MatchNone(), "-*:*"},
		{"term", Term("id", "x.z.1.3"), `id:"x.z.1.3"`},
		{"phrase", Phrase("name", "Bills Document", field.Analyzed), `name:"Bills Document"`},
		{"prefix", Prefix("id", "x.z"), `id:"x.z"*`},
		{"closed range", Range("n", "a", "b", true, false), "n:[a TO b}"},
		{"open range", Range("n", "", "b", false, true), "n:{* TO b]"},
		{"exists", Exists("n"), "_exists_:n"},
		{
			"bool",
			Bool([]*Node{Exists("name")}, nil, []*Node{Phrase("name", "x", field.Analyzed)}),
			`(+_exists_:name -name:"x")`,
		},
		{
			"should",
			Bool(nil, []*Node{Term("a", "1"), Term("a", "2")}, nil),
			`(a:"1" a:"2")`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	if KindRange.String() != "range" || Kind(42).String() != "kind(42)" {
		t.Errorf("unexpected kind names: %s, %s", KindRange, Kind(42))
	}
}
