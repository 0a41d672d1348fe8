package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/floroz/bidmaster/pkg/auth"
	pkgdb "github.com/floroz/bidmaster/pkg/database"
	marketplacev1 "github.com/floroz/bidmaster/pkg/rpc/marketplacev1"
	"github.com/floroz/bidmaster/services/auction-service/internal/adapters/api"
	"github.com/floroz/bidmaster/services/auction-service/internal/adapters/cache"
	"github.com/floroz/bidmaster/services/auction-service/internal/adapters/database"
	"github.com/floroz/bidmaster/services/auction-service/internal/config"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/bids"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/watchlist"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load environment variables (local overrides .env)
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireDatabase(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

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

	// 2. Snapshot cache (optional)
	var snapshots auctions.AuctionCache = auctions.NopCache{}
	if cfg.Redis != nil {
		rdb := redis.NewClient(cfg.Redis)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis connection failed, serving without cache", "error", err)
		} else {
			snapshots = cache.NewRedisAuctionCache(rdb, cfg.CacheTTL, logger)
			logger.Info("Redis Connected")
		}
	}

	// 3. Token verification
	publicKey, err := os.ReadFile(cfg.AuthPublicKeyPath)
	if err != nil {
		logger.Error("Failed to read auth public key", "path", cfg.AuthPublicKeyPath, "error", err)
		os.Exit(1)
	}
	signer, err := auth.NewSignerFromPublicKey(publicKey, cfg.AuthIssuer)
	if err != nil {
		logger.Error("Failed to load auth public key", "error", err)
		os.Exit(1)
	}

	// 4. Initialize Repositories (Infrastructure Layer)
	txManager := pkgdb.NewPostgresTransactionManager(pool, cfg.LockTimeout)
	auctionRepo := database.NewPostgresAuctionRepository(pool)
	bidRepo := database.NewPostgresBidRepository(pool)
	watchlistRepo := database.NewPostgresWatchlistRepository(pool)
	outboxRepo := database.NewPostgresOutboxRepository(pool)

	// 5. Initialize Services (Domain Layer)
	lifecycle := auctions.NewService(txManager, auctionRepo, bidRepo, outboxRepo, snapshots, auctions.Config{
		ReviewGraceWindow: cfg.ReviewGraceWindow,
		MaxDurationDays:   cfg.MaxDurationDays,
		PlaceholderImage:  cfg.PlaceholderImage,
	}, logger)
	engine := bids.NewEngine(txManager, auctionRepo, bidRepo, outboxRepo, watchlistRepo, snapshots, cfg.MinBidIncrement)
	watchlistService := watchlist.NewService(watchlistRepo, auctionRepo)

	// 6. Initialize API Handler (ConnectRPC)
	handler := api.NewAuctionServiceHandler(lifecycle, engine, watchlistService, logger)
	interceptors := connect.WithInterceptors(auth.NewAuthInterceptor(signer, marketplacev1.PublicProcedures...))
	path, rpcHandler := marketplacev1.NewAuctionServiceHandler(handler, interceptors)

	mux := http.NewServeMux()
	mux.Handle(path, rpcHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// 7. Start Server
	// Use h2c for HTTP/2 without TLS (common for internal services / local dev)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting Auction Service API", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("API stopped")
}
