// Command chessgraph runs the best-first game-tree search engine: it wires
// configuration, logging, metrics, the opening-book cache, the engine
// itself, and the terminal dashboard/status server together, then blocks
// until the dashboard exits or (in timed mode) the configured budget
// elapses.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/chessgraph/engine/internal/bookcache"
	"github.com/chessgraph/engine/internal/config"
	"github.com/chessgraph/engine/internal/dashboard"
	"github.com/chessgraph/engine/internal/engine"
	"github.com/chessgraph/engine/internal/httpstatus"
	"github.com/chessgraph/engine/internal/oracle"
	"github.com/chessgraph/engine/internal/position"
	logpkg "github.com/chessgraph/engine/internal/telemetry/log"
	"github.com/chessgraph/engine/internal/telemetry/metrics"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logpkg.New(cfg.Log, cfg.LogPath)
	defer logger.Sync()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("fatal: unrecovered panic", zap.Any("panic", r))
			os.Exit(1)
		}
	}()

	book, closeBook := openBook(cfg, logger)
	defer closeBook()

	o := oracle.New(book)
	root := startingRoot(cfg, logger)

	e := engine.New(engine.Config{
		Workers:     cfg.Workers,
		GraphShards: cfg.GraphShards,
	}, o)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Timed && cfg.TimedBudget > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.TimedBudget)
		defer cancel()
	}

	if err := e.Start(ctx, root); err != nil {
		logger.Fatal("engine failed to start", zap.Error(err))
	}
	defer e.Stop()

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		status := httpstatus.New(cfg.MetricsAddr, e, m, reg)
		go func() {
			if err := status.Run(ctx); err != nil {
				logger.Warn("status server stopped", zap.Error(err))
			}
		}()
	}

	logger.Info("engine started",
		zap.Int("workers", cfg.Workers),
		zap.Bool("timed", cfg.Timed),
		zap.Duration("timed_budget", cfg.TimedBudget),
	)

	d := dashboard.New(e, os.Stdout, os.Stdin, 200*time.Millisecond)
	if err := d.Run(ctx); err != nil {
		logger.Error("dashboard exited with error", zap.Error(err))
	}
}

func openBook(cfg config.Config, logger *zap.Logger) (*bookcache.Cache, func()) {
	if cfg.BookPath == "" {
		return nil, func() {}
	}
	b, err := bookcache.Open(cfg.BookPath)
	if err != nil {
		logger.Warn("opening book unavailable", zap.String("path", cfg.BookPath), zap.Error(err))
		return nil, func() {}
	}
	return b, func() { b.Close() }
}

func startingRoot(cfg config.Config, logger *zap.Logger) position.Position {
	if cfg.FEN == "" {
		return oracle.StartingPosition()
	}
	root, err := oracle.FromFEN(cfg.FEN)
	if err != nil {
		logger.Fatal("invalid START_FEN", zap.String("fen", cfg.FEN), zap.Error(err))
	}
	return root
}
