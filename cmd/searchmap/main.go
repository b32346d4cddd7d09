// Command searchmap checks that the configured engine is reachable.
//
// It loads config/<ENV>.yaml, connects the engine and pings it. With Redis it
// exits non-zero when the server does not answer within the readiness timeout.
package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchmap"
	"github.com/kailas-cloud/searchmap/internal/config"
	logpkg "github.com/kailas-cloud/searchmap/internal/logger"
	"github.com/kailas-cloud/searchmap/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchmap check",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("engine", cfg.Engine.Driver),
		zap.Strings("addrs", cfg.Engine.Addrs),
	)

	client, err := searchmap.NewFromConfig(cfg, searchmap.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to create client", zap.Error(err))
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		logger.Error("Engine not reachable", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Engine reachable", zap.String("engine", client.Engine()))
}
