package bleve

import (
	"fmt"

	blevesearch "github.com/blevesearch/bleve/v2"
	bq "github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/searchmap/internal/domain/field"
	"github.com/kailas-cloud/searchmap/internal/domain/query"
)

// toBleve maps a native query tree onto bleve queries.
func toBleve(n *query.Node) (bq.Query, error) {
	if n == nil {
		return blevesearch.NewMatchAllQuery(), nil
	}

	switch n.Kind {
	case query.KindMatchAll:
		return blevesearch.NewMatchAllQuery(), nil
	case query.KindMatchNone:
		return blevesearch.NewMatchNoneQuery(), nil
	case query.KindTerm:
		q := blevesearch.NewTermQuery(n.Value)
		q.SetField(n.Field)
		return q, nil
	case query.KindPhrase:
		return phrase(n.Field, n.Value, n.Indexing), nil
	case query.KindPrefix:
		q := blevesearch.NewPrefixQuery(n.Value)
		q.SetField(n.Field)
		return q, nil
	case query.KindRange:
		minIncl, maxIncl := n.MinInclusive, n.MaxInclusive
		q := blevesearch.NewTermRangeInclusiveQuery(n.Min, n.Max, &minIncl, &maxIncl)
		q.SetField(n.Field)
		return q, nil
	case query.KindExists:
		q := blevesearch.NewTermQuery(n.Field)
		q.SetField(field.PresenceField)
		return q, nil
	case query.KindBool:
		return boolean(n)
	default:
		return nil, fmt.Errorf("unsupported query kind %s", n.Kind)
	}
}

// phrase tokenizes text with the analyzer of the field; text with no tokens
// cannot match anything.
func phrase(name, text string, indexing field.Indexing) bq.Query {
	ts := terms(analyzerForIndexing(indexing), text)
	switch len(ts) {
	case 0:
		return blevesearch.NewMatchNoneQuery()
	case 1:
		q := blevesearch.NewTermQuery(ts[0])
		q.SetField(name)
		return q
	default:
		return blevesearch.NewPhraseQuery(ts, name)
	}
}

// boolean places a disjunction of Should clauses in the must slot, so that
// at least one of them has to match.
func boolean(n *query.Node) (bq.Query, error) {
	must, err := toBleveAll(n.Must)
	if err != nil {
		return nil, err
	}
	if len(n.Should) > 0 {
		should, err := toBleveAll(n.Should)
		if err != nil {
			return nil, err
		}
		d := blevesearch.NewDisjunctionQuery(should...)
		d.SetMin(1)
		must = append(must, d)
	}
	mustNot, err := toBleveAll(n.MustNot)
	if err != nil {
		return nil, err
	}

	if len(mustNot) == 0 {
		switch len(must) {
		case 0:
			return blevesearch.NewMatchAllQuery(), nil
		case 1:
			return must[0], nil
		default:
			return blevesearch.NewConjunctionQuery(must...), nil
		}
	}
	if len(must) == 0 {
		must = append(must, blevesearch.NewMatchAllQuery())
	}

	q := blevesearch.NewBooleanQuery()
	q.AddMust(must...)
	q.AddMustNot(mustNot...)
	return q, nil
}

func toBleveAll(nodes []*query.Node) ([]bq.Query, error) {
	out := make([]bq.Query, 0, len(nodes))
	for _, n := range nodes {
		q, err := toBleve(n)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}
