package searchmap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchmap/internal/config"
	"github.com/kailas-cloud/searchmap/internal/db"
	dbBleve "github.com/kailas-cloud/searchmap/internal/db/bleve"
	dbRedis "github.com/kailas-cloud/searchmap/internal/db/redis"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	"github.com/kailas-cloud/searchmap/internal/logger"
	"github.com/kailas-cloud/searchmap/internal/metrics"
	documentuc "github.com/kailas-cloud/searchmap/internal/usecase/document"
	searchuc "github.com/kailas-cloud/searchmap/internal/usecase/search"
	"github.com/kailas-cloud/searchmap/internal/version"
)

// Config is the file-based client configuration, see LoadConfig.
type Config = config.Config

// LoadConfig reads config/<env>.yaml with ${VAR:-default} expansion.
func LoadConfig(env string) (Config, error) {
	return config.Load(env)
}

// Version returns the build version.
func Version() string { return version.Version }

// Client is the searchmap entry point. It owns one engine and the mapping
// cache shared by every index built from it.
type Client struct {
	engine     db.Engine
	engineName string
	registry   *mapping.Registry
	docSvc     *documentuc.Service
	searchSvc  *searchuc.Service
	logger     *zap.Logger
}

// New creates a Client. Without options it runs on an in-memory bleve engine.
func New(opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	engine, err := createEngine(cfg)
	if err != nil {
		return nil, err
	}

	c, err := wireClient(engine, cfg)
	if err != nil {
		_ = engine.Close()
		return nil, err
	}
	return c, nil
}

// NewFromConfig creates a Client from a loaded configuration. The logger is
// built from cfg.Logging unless WithLogger is among opts.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	l, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("searchmap: %w", err)
	}
	all := append(fromConfig(cfg), WithLogger(l))
	return New(append(all, opts...)...)
}

func createEngine(cfg *clientConfig) (db.Engine, error) {
	switch cfg.driver {
	case config.DriverBleve:
		return dbBleve.New(), nil
	case config.DriverRedis:
		if len(cfg.addrs) == 0 {
			return nil, errors.New("searchmap: redis address required (use WithRedis)")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.addrs,
			Username:  cfg.username,
			Password:  cfg.password,
			DB:        cfg.db,
			KeyPrefix: cfg.keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("searchmap: create redis store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), cfg.readiness); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("searchmap: redis not ready: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("searchmap: unknown driver %q", cfg.driver)
	}
}

func wireClient(engine db.Engine, cfg *clientConfig) (*Client, error) {
	l := cfg.logger
	if l == nil {
		l = zap.NewNop()
	}

	var rec *metrics.Recorder
	if cfg.metricsReg != nil {
		rec = metrics.NewRecorder()
		if err := rec.Register(cfg.metricsReg); err != nil {
			return nil, fmt.Errorf("searchmap: register metrics: %w", err)
		}
	}

	searchSvc := searchuc.New(engine, cfg.driver, l, rec).
		WithPagination(cfg.defaultLimit, cfg.maxLimit)
	docSvc := documentuc.New(engine, cfg.driver, l, rec).
		WithBatching(cfg.maxBatchSize, cfg.concurrency)

	l.Debug("Client ready", zap.String("engine", cfg.driver), zap.String("version", version.Version))

	return &Client{
		engine:     engine,
		engineName: cfg.driver,
		registry:   mapping.NewRegistry(cfg.codecs),
		docSvc:     docSvc,
		searchSvc:  searchSvc,
		logger:     l,
	}, nil
}

// Engine returns the engine driver name: "bleve" or "redis".
func (c *Client) Engine() string { return c.engineName }

// Close releases the engine.
func (c *Client) Close() error {
	if c.engine == nil {
		return nil
	}
	if err := c.engine.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Ping checks engine connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.engine.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
