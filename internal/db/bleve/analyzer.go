package bleve

import (
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"

	"github.com/kailas-cloud/searchmap/internal/domain/codec"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
)

// foldFilter applies codec.Fold to every token, the same normalization the
// compiler applies to exact-match literals.
type foldFilter struct{}

func (foldFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	for _, tok := range input {
		tok.Term = []byte(codec.Fold(string(tok.Term)))
	}
	return input
}

var (
	// textAnalyzer splits on Unicode word boundaries. No stop words and no
	// stemming: phrase matches compare whole words.
	textAnalyzer analysis.Analyzer = &analysis.DefaultAnalyzer{
		Tokenizer:    unicode.NewUnicodeTokenizer(),
		TokenFilters: []analysis.TokenFilter{foldFilter{}},
	}
	// keywordAnalyzer indexes the whole value as one folded token.
	keywordAnalyzer analysis.Analyzer = &analysis.DefaultAnalyzer{
		Tokenizer:    single.NewSingleTokenTokenizer(),
		TokenFilters: []analysis.TokenFilter{foldFilter{}},
	}
	// rawAnalyzer keeps codec output untouched.
	rawAnalyzer analysis.Analyzer = &analysis.DefaultAnalyzer{
		Tokenizer: single.NewSingleTokenTokenizer(),
	}
)

func analyzerFor(spec field.Spec) analysis.Analyzer {
	switch {
	case spec.Indexing == field.Analyzed:
		return textAnalyzer
	case spec.Numeric():
		return rawAnalyzer
	default:
		return keywordAnalyzer
	}
}

func analyzerForIndexing(indexing field.Indexing) analysis.Analyzer {
	if indexing == field.Analyzed {
		return textAnalyzer
	}
	return keywordAnalyzer
}

// terms returns the indexed terms text produces under a.
func terms(a analysis.Analyzer, text string) []string {
	tokens := a.Analyze([]byte(text))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, string(tok.Term))
	}
	return out
}
