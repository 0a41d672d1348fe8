package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	pkgdb "github.com/floroz/bidmaster/pkg/database"
	"github.com/floroz/bidmaster/services/auction-service/internal/adapters/database"
	"github.com/floroz/bidmaster/services/auction-service/internal/adapters/scheduler"
	"github.com/floroz/bidmaster/services/auction-service/internal/config"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireDatabase()
	}
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pkgdb.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Postgres unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Postgres Connected")

	txManager := pkgdb.NewPostgresTransactionManager(pool, cfg.LockTimeout)
	lifecycle := auctions.NewService(
		txManager,
		database.NewPostgresAuctionRepository(pool),
		database.NewPostgresBidRepository(pool),
		database.NewPostgresOutboxRepository(pool),
		nil, // the worker invalidates snapshots from auction.ended events
		auctions.Config{
			ReviewGraceWindow: cfg.ReviewGraceWindow,
			MaxDurationDays:   cfg.MaxDurationDays,
			PlaceholderImage:  cfg.PlaceholderImage,
		},
		logger,
	)

	logger.Info("Starting expiry sweeper", "interval", cfg.SweepInterval)
	if err := scheduler.NewSweeper(lifecycle, cfg.SweepInterval, logger).Run(ctx); err != nil {
		logger.Error("Sweeper failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Sweeper stopped")
}
