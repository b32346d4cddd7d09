// Package search executes compiled predicates against an engine and projects
// the hits.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchmap/internal/compiler"
	"github.com/kailas-cloud/searchmap/internal/db"
	"github.com/kailas-cloud/searchmap/internal/domain"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	"github.com/kailas-cloud/searchmap/internal/domain/predicate"
	"github.com/kailas-cloud/searchmap/internal/logger"
	"github.com/kailas-cloud/searchmap/internal/metrics"
)

// Page selects a window of the result list. A zero Limit means the default
// page size.
type Page struct {
	Offset int
	Limit  int
}

// Service runs typed queries.
type Service struct {
	engine       Engine
	engineName   string
	logger       *zap.Logger
	metrics      *metrics.Recorder
	defaultLimit int
	maxLimit     int
}

// New creates a search service. engineName labels metrics and logs.
func New(engine Engine, engineName string, l *zap.Logger, rec *metrics.Recorder) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		engine:       engine,
		engineName:   engineName,
		logger:       l,
		metrics:      rec,
		defaultLimit: 20,
		maxLimit:     1000,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	return s
}

// Query compiles pred and proj for m, runs one engine round trip and returns
// the projected rows. Compilation errors are returned before the engine is
// touched.
func (s *Service) Query(
	ctx context.Context, m *mapping.Mapping, pred *predicate.Node, proj compiler.Projection, page Page,
) ([]compiler.Row, error) {
	c, err := s.compile(ctx, m, pred, proj)
	if err != nil {
		return nil, err
	}

	req := db.SearchRequest{
		Query:  c.Query,
		Fields: c.Fields,
		Offset: max(page.Offset, 0),
		Limit:  s.limit(page.Limit),
	}

	start := time.Now()
	natives, err := s.engine.Search(ctx, m, req)
	elapsed := time.Since(start)
	s.metrics.EngineCall(s.engineName, db.OpSearch, elapsed, err)
	if err != nil {
		s.log(ctx).Warn("Search failed",
			zap.String("entity", m.Name()),
			zap.String("engine", s.engineName),
			zap.Stringer("query", c.Query),
			zap.Error(err),
		)
		return nil, fmt.Errorf("search %s: %w", m.Name(), err)
	}

	s.log(ctx).Debug("Search done",
		zap.String("entity", m.Name()),
		zap.Stringer("query", c.Query),
		zap.Int("hits", len(natives)),
		zap.Duration("duration", elapsed),
	)

	rows := make([]compiler.Row, 0, len(natives))
	for _, n := range natives {
		row, err := c.Project(n)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", m.Name(), err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Count returns the number of documents of m matching pred.
func (s *Service) Count(ctx context.Context, m *mapping.Mapping, pred *predicate.Node) (int, error) {
	c, err := s.compile(ctx, m, pred, compiler.Whole())
	if err != nil {
		return 0, err
	}

	start := time.Now()
	n, err := s.engine.Count(ctx, m, c.Query)
	elapsed := time.Since(start)
	s.metrics.EngineCall(s.engineName, db.OpCount, elapsed, err)
	if err != nil {
		s.log(ctx).Warn("Count failed",
			zap.String("entity", m.Name()),
			zap.String("engine", s.engineName),
			zap.Stringer("query", c.Query),
			zap.Error(err),
		)
		return 0, fmt.Errorf("count %s: %w", m.Name(), err)
	}

	s.log(ctx).Debug("Count done",
		zap.String("entity", m.Name()),
		zap.Stringer("query", c.Query),
		zap.Int("total", n),
		zap.Duration("duration", elapsed),
	)
	return n, nil
}

func (s *Service) compile(
	ctx context.Context, m *mapping.Mapping, pred *predicate.Node, proj compiler.Projection,
) (*compiler.Compiled, error) {
	c, err := compiler.Compile(m, pred, proj)
	if err != nil {
		status := metrics.StatusError
		if errors.Is(err, domain.ErrUnsupportedPredicate) {
			status = metrics.StatusUnsupported
		}
		s.metrics.Compiled(m.Name(), status)
		s.log(ctx).Debug("Compile failed",
			zap.String("entity", m.Name()),
			zap.Stringer("predicate", pred),
			zap.Error(err),
		)
		return nil, fmt.Errorf("compile %s: %w", m.Name(), err)
	}
	s.metrics.Compiled(m.Name(), metrics.StatusOK)
	return c, nil
}

func (s *Service) limit(n int) int {
	switch {
	case n <= 0:
		return s.defaultLimit
	case n > s.maxLimit:
		return s.maxLimit
	default:
		return n
	}
}

// log prefers a logger carried by ctx.
func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}
