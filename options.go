package searchmap

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchmap/internal/config"
	"github.com/kailas-cloud/searchmap/internal/domain/codec"
)

const defaultReadinessTimeout = 10 * time.Second

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "bleve" or "redis"
	addrs     []string
	username  string
	password  string
	db        int
	keyPrefix string
	readiness time.Duration

	defaultLimit int
	maxLimit     int
	maxBatchSize int
	concurrency  int

	codecs     *codec.Registry
	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		driver:    config.DriverBleve,
		readiness: defaultReadinessTimeout,
	}
}

// WithBleve selects the in-memory bleve engine. This is the default.
func WithBleve() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverBleve
	})
}

// WithRedis configures the client to use Redis with the query engine.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisCluster configures several seed addresses and credentials.
func WithRedisCluster(addrs []string, username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverRedis
		c.addrs = append([]string(nil), addrs...)
		c.username = username
		c.password = password
	})
}

// WithKeyPrefix namespaces Redis document keys. Default: "searchmap:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithReadinessTimeout bounds the wait for Redis at construction.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		if d > 0 {
			c.readiness = d
		}
	})
}

// WithPagination sets the default and maximum page sizes of searches.
// Defaults: 20 and 1000.
func WithPagination(defaultLimit, maxLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
	})
}

// WithBatching sets the chunk size of batch writes and how many chunks are
// written concurrently. Defaults: 100 and 4.
func WithBatching(maxBatchSize, concurrency int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = maxBatchSize
		c.concurrency = concurrency
	})
}

// WithCodecs replaces the codec registry used to build mappings.
func WithCodecs(r *CodecRegistry) Option {
	return optionFunc(func(c *clientConfig) {
		c.codecs = r
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics registers query pipeline metrics on the given registerer.
// Pass nil to disable (default).
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// fromConfig turns a loaded configuration into options.
func fromConfig(cfg config.Config) []Option {
	return []Option{optionFunc(func(c *clientConfig) {
		c.driver = cfg.Engine.Driver
		c.addrs = cfg.Engine.Addrs
		c.username = cfg.Engine.Username
		c.password = cfg.Engine.Password
		c.db = cfg.Engine.DB
		c.keyPrefix = cfg.Engine.KeyPrefix
		if cfg.Engine.ReadinessTimeout > 0 {
			c.readiness = time.Duration(cfg.Engine.ReadinessTimeout) * time.Second
		}
		c.defaultLimit = cfg.Search.DefaultLimit
		c.maxLimit = cfg.Search.MaxLimit
		c.maxBatchSize = cfg.Search.MaxBatchSize
		c.concurrency = cfg.Search.Concurrency
	})}
}
