package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"railmart/internal/config"
	"railmart/internal/feeds"
	"railmart/internal/metrics"
	"railmart/internal/pipeline"
	"railmart/internal/server"
	"railmart/internal/warehouse"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// CLI flags
	etlOnly := flag.Bool("etl", false, "Run the warehouse refresh, then exit")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.Parse()

	// Context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create connection pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	mcol := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		mcol.Serve(cfg.MetricsAddr, logger)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
		os.Exit(0)
	}()

	if *etlOnly {
		fetcher := feeds.NewFetcher(cfg.FetchTimeout, logger)
		loader := warehouse.NewLoader(pool, cfg.WarehouseSchema, logger, mcol)
		p := pipeline.New(cfg, fetcher, loader, mcol, logger)

		res, err := p.Run(ctx)
		if err != nil {
			logger.Error("warehouse refresh failed", "error", err)
			os.Exit(1)
		}
		if res.SourceErrors != nil {
			logger.Warn("some sources were skipped", "error", res.SourceErrors)
		}
		logger.Info("refresh finished",
			"sources", res.Sources,
			"skipped", res.Skipped,
			"segments", res.Segments,
			"trip_stops", res.TripStops,
			"loaded", res.Loaded,
		)
		return
	}

	store := warehouse.NewStore(pool, cfg.WarehouseSchema)
	srv := server.New(cfg, store, logger)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
