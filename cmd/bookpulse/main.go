package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookpulse-lab/bookpulse/internal/aggregation"
	"github.com/bookpulse-lab/bookpulse/internal/cache"
	"github.com/bookpulse-lab/bookpulse/internal/config"
	"github.com/bookpulse-lab/bookpulse/internal/dashboard"
	"github.com/bookpulse-lab/bookpulse/internal/migrations"
	"github.com/bookpulse-lab/bookpulse/internal/provider"
	"github.com/bookpulse-lab/bookpulse/internal/server"
	"github.com/bookpulse-lab/bookpulse/internal/storage/postgres"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "bookpulse.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	interval, err := time.ParseDuration(cfg.Aggregation.EffectiveInterval())
	if err != nil {
		slog.Error("Invalid aggregation interval", "value", cfg.Aggregation.EffectiveInterval(), "error", err)
		os.Exit(1)
	}
	fetchTimeout, err := time.ParseDuration(cfg.Events.FetchTimeout)
	if err != nil {
		slog.Error("Invalid fetch timeout", "value", cfg.Events.FetchTimeout, "error", err)
		os.Exit(1)
	}
	epoch, err := time.Parse(time.RFC3339, cfg.Aggregation.Epoch)
	if err != nil {
		slog.Error("Invalid aggregation epoch", "value", cfg.Aggregation.Epoch, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize Storage (PostgreSQL)
	eventStore, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer eventStore.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(eventStore.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	dashboardStore := postgres.NewDashboardAdapter(eventStore.DB())

	// 3. Initialize Checkpoint Cache (Redis)
	redisClient, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// 4. Initialize Aggregation Pipeline
	checkpoint := aggregation.NewCheckpoint(cache.NewCheckpointCache(redisClient), eventStore, epoch)
	fetcher := aggregation.NewFetcher(cfg.Events.BaseURL, fetchTimeout)
	aggregator := aggregation.NewAggregator(dashboardStore)
	pipeline := aggregation.NewPipeline(fetcher, checkpoint, aggregator)
	scheduler := aggregation.NewScheduler(interval, pipeline)

	slog.Info("Aggregation pipeline initialized",
		"interval", interval,
		"enabled", cfg.Aggregation.Enabled,
		"events_base_url", cfg.Events.BaseURL,
		"epoch", epoch,
	)

	// 5. Initialize HTTP Services
	providerSvc := provider.NewService(eventStore, cfg.Server.MaxBodySizeMB, cfg.Events.MaxPageSize)
	dashboardSvc := dashboard.NewService(dashboardStore)

	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), eventStore.DB(), cfg.Server.Mode)
	providerSvc.RegisterRoutes(srv.Engine)
	dashboardSvc.RegisterRoutes(srv.Engine)

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// 6. Start Services
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Aggregation.Enabled {
		g.Go(func() error {
			return scheduler.Start(gctx)
		})
	} else {
		slog.Info("Aggregation scheduler disabled by config")
	}

	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Service stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
