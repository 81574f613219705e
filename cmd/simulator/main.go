// Command simulator manufactures test traffic for the events API. "load"
// stages a CSV of historical booking events onto a Redis queue in
// chronological order; "drain" pops the queue and POSTs each event to the
// API. The default runs both.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookpulse-lab/bookpulse/internal/cache"
	"github.com/bookpulse-lab/bookpulse/internal/simulation"
	"github.com/joho/godotenv"
)

const postTimeout = 10 * time.Second

func main() {
	csvPath := flag.String("csv", "data.csv", "Path to the events CSV file")
	mode := flag.String("mode", "all", "load | drain | all")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Local overrides live in .env; absence is fine.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env")
	}

	redisAddr := envOr("REDIS_ADDR", "127.0.0.1:6379")
	baseURL := envOr("EVENTS_API_BASE_URL", "http://127.0.0.1:8080")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := cache.Connect(ctx, redisAddr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	if *mode == "load" || *mode == "all" {
		stats, err := simulation.LoadCSV(ctx, *csvPath, client)
		if err != nil {
			slog.Error("CSV load failed", "error", err)
			os.Exit(1)
		}
		slog.Info("CSV load complete",
			"rows", stats.Rows,
			"enqueued", stats.Enqueued,
			"invalid", stats.Invalid,
		)
	}

	if *mode == "drain" || *mode == "all" {
		poster := simulation.NewPoster(client, baseURL, postTimeout)
		posted, failed, err := poster.Drain(ctx)
		if err != nil {
			slog.Error("Queue drain stopped", "error", err, "posted", posted, "failed", failed)
			os.Exit(1)
		}
		slog.Info("Queue drain complete", "posted", posted, "failed", failed)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
