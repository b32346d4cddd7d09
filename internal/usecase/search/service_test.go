package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/searchmap/internal/compiler"
	"github.com/kailas-cloud/searchmap/internal/db"
	"github.com/kailas-cloud/searchmap/internal/db/bleve"
	"github.com/kailas-cloud/searchmap/internal/domain"
	"github.com/kailas-cloud/searchmap/internal/domain/document"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	p "github.com/kailas-cloud/searchmap/internal/domain/predicate"
	"github.com/kailas-cloud/searchmap/internal/domain/query"
	"github.com/kailas-cloud/searchmap/internal/logger"
	"github.com/kailas-cloud/searchmap/internal/metrics"
)

// --- Mocks ---

type mockEngine struct {
	searchResult []*document.Native
	searchErr    error
	countResult  int
	countErr     error

	calls   int
	lastReq db.SearchRequest
}

func (m *mockEngine) Search(_ context.Context, _ *mapping.Mapping, req db.SearchRequest) ([]*document.Native, error) {
	m.calls++
	m.lastReq = req
	return m.searchResult, m.searchErr
}

func (m *mockEngine) Count(_ context.Context, _ *mapping.Mapping, _ *query.Node) (int, error) {
	m.calls++
	return m.countResult, m.countErr
}

func noteMapping() *mapping.Mapping {
	return mapping.NewBuilder("note").
		Text("Body").
		Keyword("Tag").
		Int("Rank").
		MustBuild()
}

func holder(t *testing.T, m *mapping.Mapping, props map[string]any) *document.Native {
	t.Helper()
	h := document.NewHolder(m)
	for k, v := range props {
		if err := h.SetProperty(k, v); err != nil {
			t.Fatalf("SetProperty(%s): %v", k, err)
		}
	}
	return h.Document()
}

// --- Query tests ---

func TestQuery_CompileErrorSkipsEngine(t *testing.T) {
	eng := &mockEngine{}
	svc := New(eng, "mock", nil, metrics.NewRecorder())

	_, err := svc.Query(context.Background(), noteMapping(), p.StartsWith("Body", "x"), compiler.Whole(), Page{})
	if !errors.Is(err, domain.ErrUnsupportedPredicate) {
		t.Fatalf("expected ErrUnsupportedPredicate, got %v", err)
	}
	var upe *domain.UnsupportedPredicateError
	if !errors.As(err, &upe) {
		t.Fatalf("expected *UnsupportedPredicateError in chain, got %T", err)
	}
	if eng.calls != 0 {
		t.Errorf("engine called %d times, want 0", eng.calls)
	}
}

func TestQuery_UnknownField(t *testing.T) {
	eng := &mockEngine{}
	svc := New(eng, "mock", nil, nil)

	_, err := svc.Query(context.Background(), noteMapping(), p.Eq("Missing", "x"), compiler.Whole(), Page{})
	if !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if eng.calls != 0 {
		t.Errorf("engine called %d times, want 0", eng.calls)
	}
}

func TestQuery_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		page       Page
		wantOffset int
		wantLimit  int
	}{
		{"defaults", Page{}, 0, 5},
		{"explicit", Page{Offset: 3, Limit: 7}, 3, 7},
		{"clamped", Page{Limit: 500}, 0, 10},
		{"negative offset", Page{Offset: -2, Limit: 1}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &mockEngine{}
			svc := New(eng, "mock", nil, nil).WithPagination(5, 10)

			if _, err := svc.Query(context.Background(), noteMapping(), nil, compiler.Whole(), tt.page); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if eng.lastReq.Offset != tt.wantOffset || eng.lastReq.Limit != tt.wantLimit {
				t.Errorf("got offset=%d limit=%d, want %d/%d",
					eng.lastReq.Offset, eng.lastReq.Limit, tt.wantOffset, tt.wantLimit)
			}
		})
	}
}

func TestQuery_RequestsProjectedFields(t *testing.T) {
	m := noteMapping()
	eng := &mockEngine{searchResult: []*document.Native{holder(t, m, map[string]any{"Rank": int64(4)})}}
	svc := New(eng, "mock", nil, nil)

	rows, err := svc.Query(context.Background(), m, p.Eq("Tag", "a"), compiler.Properties("Rank", "Tag"), Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := eng.lastReq.Fields; len(got) != 2 || got[0] != "Rank" || got[1] != "Tag" {
		t.Errorf("fields = %v, want [Rank Tag]", got)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Values[0] != int64(4) || rows[0].Values[1] != nil {
		t.Errorf("values = %v, want [4 <nil>]", rows[0].Values)
	}
}

func TestQuery_EngineErrorWrappedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	engineErr := &db.Error{Op: db.OpFTSearch, Err: db.ErrIndexNotFound}
	eng := &mockEngine{searchErr: engineErr}
	svc := New(eng, "mock", zap.New(core), nil)

	_, err := svc.Query(context.Background(), noteMapping(), nil, compiler.Whole(), Page{})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpFTSearch {
		t.Errorf("expected *db.Error with op %s, got %v", db.OpFTSearch, err)
	}
	if logs.FilterMessage("Search failed").Len() != 1 {
		t.Errorf("expected one warn entry, got %v", logs.All())
	}
}

// --- Count tests ---

func TestCount_Success(t *testing.T) {
	eng := &mockEngine{countResult: 42}
	svc := New(eng, "mock", nil, nil)

	n, err := svc.Count(context.Background(), noteMapping(), p.Gt("Rank", 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("count = %d, want 42", n)
	}
}

func TestCount_Errors(t *testing.T) {
	eng := &mockEngine{countErr: errors.New("connection refused")}
	svc := New(eng, "mock", nil, nil)

	if _, err := svc.Count(context.Background(), noteMapping(), nil); err == nil {
		t.Fatal("expected engine error")
	}
	if _, err := svc.Count(context.Background(), noteMapping(), p.Lt("Tag", "x")); !errors.Is(err, domain.ErrUnsupportedPredicate) {
		t.Fatalf("expected ErrUnsupportedPredicate, got %v", err)
	}
}

// --- Against the bleve engine ---

func TestQuery_Bleve(t *testing.T) {
	ctx := context.Background()
	m := noteMapping()
	eng := bleve.New()
	t.Cleanup(func() { _ = eng.Close() })
	if err := eng.Ensure(ctx, m); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	err := eng.Put(ctx, m,
		holder(t, m, map[string]any{"Body": "the quick brown fox", "Tag": "Animal", "Rank": int64(1)}),
		holder(t, m, map[string]any{"Body": "brown bread", "Tag": "food", "Rank": int64(2)}),
		holder(t, m, map[string]any{"Body": "quick brown", "Rank": int64(3)}),
	)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	svc := New(eng, "bleve", nil, metrics.NewRecorder())

	rows, err := svc.Query(ctx, m, p.And(p.Eq("Body", "quick brown"), p.Eq("Tag", "animal")), compiler.Whole(), Page{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if v, _ := rows[0].Holder.Property("Rank"); v != int64(1) {
		t.Errorf("Rank = %v, want 1", v)
	}

	n, err := svc.Count(ctx, m, p.Ge("Rank", 2))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	n, err = svc.Count(ctx, m, p.IsNull("Tag"))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("null count = %d, want 1", n)
	}
}

func TestQuery_ContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	eng := &mockEngine{}
	svc := New(eng, "mock", nil, nil)

	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))
	if _, err := svc.Query(ctx, noteMapping(), p.Eq("Tag", "a"), compiler.Whole(), Page{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.FilterMessage("Search done").Len() != 1 {
		t.Errorf("expected debug entry on the context logger, got %v", logs.All())
	}
}
