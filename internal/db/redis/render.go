package redis

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kailas-cloud/searchmap/internal/domain/codec"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	"github.com/kailas-cloud/searchmap/internal/domain/query"
)

// matchNone references a presence tag no document can carry: reserved names
// are rejected by the mapping builder.
var matchNone = "@" + field.PresenceField + ":{" + tagEscaper.Replace(field.ReservedPrefix+"none") + "}"

// render translates a native query tree into FT.SEARCH (dialect 2) syntax.
func render(m *mapping.Mapping, n *query.Node) (string, error) {
	if n == nil {
		return "*", nil
	}

	switch n.Kind {
	case query.KindMatchAll:
		return "*", nil
	case query.KindMatchNone:
		return matchNone, nil
	case query.KindTerm:
		if spec, ok := m.FieldNamed(n.Field); ok && spec.Numeric() {
			v, err := wireBound(spec, n.Value)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("@%s:[%s %s]", n.Field, v, v), nil
		}
		return tagEquals(n.Field, n.Value), nil
	case query.KindPhrase:
		return renderPhrase(n), nil
	case query.KindPrefix:
		return fmt.Sprintf("@%s:{%s*}", n.Field, tagEscaper.Replace(n.Value)), nil
	case query.KindRange:
		return renderRange(m, n)
	case query.KindExists:
		return buildTagFilter(field.PresenceField, n.Field), nil
	case query.KindBool:
		return renderBool(m, n)
	default:
		return "", fmt.Errorf("unsupported query kind %s", n.Kind)
	}
}

func renderPhrase(n *query.Node) string {
	if n.Indexing != field.Analyzed {
		return tagEquals(n.Field, codec.Fold(n.Value))
	}
	if strings.IndexFunc(n.Value, isWordRune) < 0 {
		return matchNone
	}
	return fmt.Sprintf(`@%s:"%s"`, n.Field, escapeQuery(n.Value))
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func renderRange(m *mapping.Mapping, n *query.Node) (string, error) {
	spec, ok := m.FieldNamed(n.Field)
	if !ok || !spec.Numeric() {
		return "", fmt.Errorf("range on non-numeric field %s", n.Field)
	}
	minBound, maxBound := "-inf", "+inf"
	if n.Min != "" {
		v, err := wireBound(spec, n.Min)
		if err != nil {
			return "", err
		}
		minBound = exclusive(v, n.MinInclusive)
	}
	if n.Max != "" {
		v, err := wireBound(spec, n.Max)
		if err != nil {
			return "", err
		}
		maxBound = exclusive(v, n.MaxInclusive)
	}
	return fmt.Sprintf("@%s:[%s %s]", n.Field, minBound, maxBound), nil
}

func exclusive(v string, inclusive bool) string {
	if inclusive {
		return v
	}
	return "(" + v
}

func wireBound(spec field.Spec, encoded string) (string, error) {
	v, err := spec.Codec.Decode(encoded)
	if err != nil {
		return "", err
	}
	return decimal(v)
}

// renderBool joins Must parts (intersection), one (a | b) group for Should
// and a negated group per MustNot clause. Composite children are wrapped in
// parentheses.
func renderBool(m *mapping.Mapping, n *query.Node) (string, error) {
	var parts []string
	for _, c := range n.Must {
		s, err := renderChild(m, c)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	if len(n.Should) > 0 {
		should := make([]string, 0, len(n.Should))
		for _, c := range n.Should {
			s, err := renderChild(m, c)
			if err != nil {
				return "", err
			}
			should = append(should, s)
		}
		parts = append(parts, "("+strings.Join(should, " | ")+")")
	}
	for _, c := range n.MustNot {
		s, err := renderChild(m, c)
		if err != nil {
			return "", err
		}
		parts = append(parts, "-"+s)
	}
	if len(parts) == 0 {
		return "*", nil
	}
	return strings.Join(parts, " "), nil
}

func renderChild(m *mapping.Mapping, c *query.Node) (string, error) {
	s, err := render(m, c)
	if err != nil {
		return "", err
	}
	if c != nil && c.Kind == query.KindBool {
		return "(" + s + ")", nil
	}
	return s, nil
}

// tagEquals matches an exact value; the empty string needs INDEXEMPTY and
// isempty() since tag filters cannot be empty.
func tagEquals(key, value string) string {
	if value == "" {
		return fmt.Sprintf("isempty(@%s)", key)
	}
	return buildTagFilter(key, value)
}

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
