//go:build integration

package tests

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/floroz/bidmaster/pkg/auth"
	pkgdb "github.com/floroz/bidmaster/pkg/database"
	"github.com/floroz/bidmaster/pkg/money"
	marketplacev1 "github.com/floroz/bidmaster/pkg/rpc/marketplacev1"
	"github.com/floroz/bidmaster/services/auction-service/internal/adapters/api"
	"github.com/floroz/bidmaster/services/auction-service/internal/adapters/database"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/bids"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/watchlist"
)

const testIssuer = "bidmaster-test"

// testAuth mints tokens that the app under test accepts.
type testAuth struct {
	signer *auth.Signer
}

func newTestAuth(t *testing.T) (*testAuth, *auth.Signer) {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	pubBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})

	minting, err := auth.NewSigner(privPEM, pubPEM, testIssuer)
	require.NoError(t, err)
	verifying, err := auth.NewSignerFromPublicKey(pubPEM, testIssuer)
	require.NoError(t, err)

	return &testAuth{signer: minting}, verifying
}

func (a *testAuth) token(t *testing.T, userID uuid.UUID, name string, permissions ...string) string {
	t.Helper()
	token, err := a.signer.GenerateAccessToken(userID, name+"@example.com", name, permissions)
	require.NoError(t, err)
	return token
}

// authed wraps msg in a request carrying the bearer token.
func authed[T any](token string, msg *T) *connect.Request[T] {
	r := connect.NewRequest(msg)
	r.Header().Set("Authorization", "Bearer "+token)
	return r
}

// setupApp wires the marketplace API against a real database, the same way
// cmd/api does, and returns a client pointed at an httptest server.
func setupApp(t *testing.T, pool *pgxpool.Pool) (*marketplacev1.AuctionServiceClient, *testAuth) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// 1. Initialize Repositories (Infrastructure Layer)
	txManager := pkgdb.NewPostgresTransactionManager(pool, 5*time.Second)
	auctionRepo := database.NewPostgresAuctionRepository(pool)
	bidRepo := database.NewPostgresBidRepository(pool)
	watchlistRepo := database.NewPostgresWatchlistRepository(pool)
	outboxRepo := database.NewPostgresOutboxRepository(pool)

	// 2. Initialize Services (Domain Layer)
	lifecycle := auctions.NewService(txManager, auctionRepo, bidRepo, outboxRepo, nil, auctions.Config{
		ReviewGraceWindow: 5 * time.Minute,
		MaxDurationDays:   30,
		PlaceholderImage:  "https://img.example.com/placeholder.png",
	}, logger)
	engine := bids.NewEngine(txManager, auctionRepo, bidRepo, outboxRepo, watchlistRepo, nil, money.Cents(100))
	watchlistService := watchlist.NewService(watchlistRepo, auctionRepo)

	// 3. Initialize API Handler (ConnectRPC) behind the auth interceptor
	minter, verifier := newTestAuth(t)
	handler := api.NewAuctionServiceHandler(lifecycle, engine, watchlistService, logger)
	path, rpcHandler := marketplacev1.NewAuctionServiceHandler(handler,
		connect.WithInterceptors(auth.NewAuthInterceptor(verifier, marketplacev1.PublicProcedures...)),
	)

	// 4. Create a test HTTP server
	mux := http.NewServeMux()
	mux.Handle(path, rpcHandler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return marketplacev1.NewAuctionServiceClient(server.Client(), server.URL), minter
}

// expireAuction moves ends_at into the past so the auction reads as expired.
func expireAuction(t *testing.T, pool *pgxpool.Pool, auctionID string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		"UPDATE auctions SET ends_at = NOW() - INTERVAL '1 minute' WHERE id = $1", auctionID)
	require.NoError(t, err)
}

// countOutboxEvents counts outbox rows of one event type.
func countOutboxEvents(t *testing.T, pool *pgxpool.Pool, eventType string) int {
	t.Helper()
	var count int
	err := pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM outbox_events WHERE event_type = $1", eventType).Scan(&count)
	require.NoError(t, err)
	return count
}
