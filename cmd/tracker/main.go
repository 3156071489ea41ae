package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/Swordfish189/github-events-tracker/internal/api"
	"github.com/Swordfish189/github-events-tracker/internal/config"
	"github.com/Swordfish189/github-events-tracker/internal/engine"
	"github.com/Swordfish189/github-events-tracker/internal/fetch"
	"github.com/Swordfish189/github-events-tracker/internal/ingest"
	"github.com/Swordfish189/github-events-tracker/internal/logging"
	"github.com/Swordfish189/github-events-tracker/internal/metrics"
	"github.com/Swordfish189/github-events-tracker/internal/poll"
	"github.com/Swordfish189/github-events-tracker/internal/storage"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	cfgPath := flag.String("config", "config.yml", "path to config file (yaml or json)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// A broken config is not fatal: run with nothing to poll.
		cfg = config.DefaultConfig()
		cfg.Repositories = nil
	}
	logger := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		logger.Error("config load failed, starting with no repositories", "path", *cfgPath, "err", err)
	}
	logger.Info("tracker starting", "version", Version, "repositories", cfg.Repositories)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		logger.Error("open store", "err", err)
		return
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		logger.Error("init store", "err", err)
		return
	}

	fetchStats := metrics.NewStore()
	eng := engine.NewEngine(cfg.Window, store, logger)
	fetcher := fetch.NewFetcher(cfg.Feed, store, fetchStats, logger)

	scheduler := poll.NewScheduler(cfg.Repositories, cfg.Poll.Interval, fetcher, logger)
	scheduler.OnCycleDone(fetchStats.CycleDone)
	scheduler.Start(ctx)

	ingest.StartKafka(ctx, cfg.Ingest.Kafka, store, logger)
	api.Start(ctx, cfg.API, eng, fetchStats, cfg.Repositories, logger, Version)

	<-ctx.Done()
	logger.Info("tracker stopping")
}
