// Package document writes holders and bound entities to an engine.
package document

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/searchmap/internal/db"
	"github.com/kailas-cloud/searchmap/internal/domain"
	domdoc "github.com/kailas-cloud/searchmap/internal/domain/document"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	"github.com/kailas-cloud/searchmap/internal/logger"
	"github.com/kailas-cloud/searchmap/internal/metrics"
)

// Batch defaults.
const (
	DefaultMaxBatchSize = 100
	DefaultConcurrency  = 4
)

// Service handles document writes.
type Service struct {
	engine       Writer
	engineName   string
	logger       *zap.Logger
	metrics      *metrics.Recorder
	maxBatchSize int
	concurrency  int
}

// New creates a document service.
func New(engine Writer, engineName string, l *zap.Logger, rec *metrics.Recorder) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		engine:       engine,
		engineName:   engineName,
		logger:       l,
		metrics:      rec,
		maxBatchSize: DefaultMaxBatchSize,
		concurrency:  DefaultConcurrency,
	}
}

// WithBatching configures the chunk size of PutBatch and how many chunks are
// written at once.
func (s *Service) WithBatching(maxBatchSize, concurrency int) *Service {
	if maxBatchSize > 0 {
		s.maxBatchSize = maxBatchSize
	}
	if concurrency > 0 {
		s.concurrency = concurrency
	}
	return s
}

// Put writes one holder to the index of its mapping.
func (s *Service) Put(ctx context.Context, h *domdoc.Holder) error {
	if h == nil || h.Mapping() == nil {
		return domain.NewMappingError("<unmapped>", "", "holder has no mapping")
	}
	return s.PutBatch(ctx, h.Mapping(), []*domdoc.Holder{h})
}

// PutBatch writes holders of m in chunks of at most the configured batch
// size. Every holder is checked before anything is written.
func (s *Service) PutBatch(ctx context.Context, m *mapping.Mapping, holders []*domdoc.Holder) error {
	if len(holders) == 0 {
		return nil
	}
	docs := make([]*domdoc.Native, len(holders))
	for i, h := range holders {
		if h == nil {
			return domain.NewMappingError(m.Name(), "", fmt.Sprintf("holder %d is nil", i))
		}
		if h.Mapping() != m {
			return domain.NewMappingError(m.Name(), "", fmt.Sprintf("holder %d belongs to another mapping", i))
		}
		docs[i] = h.Document()
	}
	return s.write(ctx, m, docs)
}

// PutEntities binds each struct value through m and writes the results.
func (s *Service) PutEntities(ctx context.Context, m *mapping.Mapping, values ...any) error {
	holders := make([]*domdoc.Holder, 0, len(values))
	for _, v := range values {
		h, err := domdoc.Bind(m, v)
		if err != nil {
			return fmt.Errorf("bind %s: %w", m.Name(), err)
		}
		holders = append(holders, h)
	}
	return s.PutBatch(ctx, m, holders)
}

func (s *Service) write(ctx context.Context, m *mapping.Mapping, docs []*domdoc.Native) error {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for lo := 0; lo < len(docs); lo += s.maxBatchSize {
		chunk := docs[lo:min(lo+s.maxBatchSize, len(docs))]
		g.Go(func() error {
			if err := s.engine.Put(ctx, m, chunk...); err != nil {
				return err
			}
			s.metrics.DocumentsPut(m.Name(), len(chunk))
			return nil
		})
	}
	err := g.Wait()

	elapsed := time.Since(start)
	s.metrics.EngineCall(s.engineName, db.OpPut, elapsed, err)
	if err != nil {
		s.log(ctx).Warn("Put failed",
			zap.String("entity", m.Name()),
			zap.String("engine", s.engineName),
			zap.Int("documents", len(docs)),
			zap.Error(err),
		)
		return fmt.Errorf("put %s: %w", m.Name(), err)
	}

	s.log(ctx).Debug("Put done",
		zap.String("entity", m.Name()),
		zap.Int("documents", len(docs)),
		zap.Duration("duration", elapsed),
	)
	return nil
}

// log prefers a logger carried by ctx.
func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}
