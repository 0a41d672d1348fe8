package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	pkgdb "github.com/floroz/bidmaster/pkg/database"
	pkgevents "github.com/floroz/bidmaster/pkg/events"
	"github.com/floroz/bidmaster/services/auction-service/internal/adapters/cache"
	"github.com/floroz/bidmaster/services/auction-service/internal/adapters/database"
	"github.com/floroz/bidmaster/services/auction-service/internal/adapters/events"
	"github.com/floroz/bidmaster/services/auction-service/internal/config"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireDatabase()
	}
	if err == nil {
		err = cfg.RequireBroker()
	}
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Redis == nil {
		logger.Error("REDIS_URL is not set")
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Initialize Postgres Connection Pool
	pool, err := pkgdb.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Postgres unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Postgres Connected")

	// 2. Connect to RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()
	logger.Info("RabbitMQ Connected")

	publisher, err := pkgevents.NewRabbitMQPublisher(amqpConn)
	if err != nil {
		logger.Error("Failed to create RabbitMQ publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	// 3. Connect to Redis
	rdb := redis.NewClient(cfg.Redis)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	logger.Info("Redis Connected")

	// 4. Outbox relay and live feed
	txManager := pkgdb.NewPostgresTransactionManager(pool, cfg.LockTimeout)
	outboxRelay := pkgevents.NewOutboxRelay(
		database.NewPostgresOutboxRepository(pool),
		publisher,
		txManager,
		cfg.OutboxBatchSize,
		cfg.OutboxInterval,
		pkgevents.ExchangeAuctionEvents,
		logger,
	)
	liveFeed := events.NewLiveFeedConsumer(
		amqpConn,
		events.NewRedisFeedPublisher(rdb),
		cache.NewRedisAuctionCache(rdb, cfg.CacheTTL, logger),
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting Outbox Relay...")
		return outboxRelay.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("Starting Live Feed Consumer...")
		return liveFeed.Run(gctx)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}
