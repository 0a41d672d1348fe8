//go:build integration

package bids_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floroz/bidmaster/pkg/database"
	"github.com/floroz/bidmaster/pkg/money"
	"github.com/floroz/bidmaster/pkg/testhelpers"
	infradb "github.com/floroz/bidmaster/services/auction-service/internal/adapters/database"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/bids"
	"github.com/floroz/bidmaster/services/auction-service/migrations"
)

// seedAuction inserts an active auction directly
func seedAuction(t *testing.T, pool *pgxpool.Pool, sellerID uuid.UUID, startingPrice money.Cents, endsAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO auctions (id, seller_id, title, category, item_condition, starting_price, duration_days, ends_at, status)
		VALUES ($1, $2, 'Vintage Guitar', 'music', 'used', $3, 7, $4, 'active')
	`, id, sellerID, startingPrice, endsAt)
	require.NoError(t, err, "Failed to seed auction")
	return id
}

type testEngine struct {
	Engine    *bids.Engine
	Auctions  *infradb.PostgresAuctionRepository
	Bids      *infradb.PostgresBidRepository
	TxManager database.TransactionManager
	Pool      *pgxpool.Pool
}

func setupEngine(t *testing.T) *testEngine {
	t.Helper()
	testDB := testhelpers.NewTestDatabase(t, migrations.FS)
	t.Cleanup(testDB.Close)

	pool := testDB.Pool
	txManager := database.NewPostgresTransactionManager(pool, 5*time.Second)
	auctionRepo := infradb.NewPostgresAuctionRepository(pool)
	bidRepo := infradb.NewPostgresBidRepository(pool)
	outboxRepo := infradb.NewPostgresOutboxRepository(pool)
	watchlistRepo := infradb.NewPostgresWatchlistRepository(pool)

	return &testEngine{
		Engine:    bids.NewEngine(txManager, auctionRepo, bidRepo, outboxRepo, watchlistRepo, nil, 100),
		Auctions:  auctionRepo,
		Bids:      bidRepo,
		TxManager: txManager,
		Pool:      pool,
	}
}

func countOutboxEvents(t *testing.T, pool *pgxpool.Pool, eventType string) int {
	t.Helper()
	var count int
	err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM outbox_events WHERE event_type = $1", eventType).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestEngine_PlaceBid_Sequence(t *testing.T) {
	te := setupEngine(t)
	ctx := context.Background()
	auctionID := seedAuction(t, te.Pool, uuid.New(), 1000, time.Now().Add(time.Hour))

	alice, bob := uuid.New(), uuid.New()

	res, err := te.Engine.PlaceBid(ctx, bids.PlaceBidCommand{AuctionID: auctionID, BidderID: alice, BidderName: "Alice", Amount: 1000})
	require.NoError(t, err, "a bid at the starting price is accepted")
	assert.Equal(t, 1, res.BidCount)

	_, err = te.Engine.PlaceBid(ctx, bids.PlaceBidCommand{AuctionID: auctionID, BidderID: bob, Amount: 1000})
	var tooLow *bids.BidTooLowError
	require.ErrorAs(t, err, &tooLow, "ties are rejected")
	assert.Equal(t, money.Cents(1100), tooLow.MinAmount)

	res, err = te.Engine.PlaceBid(ctx, bids.PlaceBidCommand{AuctionID: auctionID, BidderID: bob, BidderName: "Bob", Amount: 1100})
	require.NoError(t, err)
	assert.Equal(t, 2, res.BidCount)
	assert.Equal(t, money.Cents(1100), res.CurrentBid)

	ledger, err := te.Engine.ListAuctionBids(ctx, auctionID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, bob, ledger[0].BidderID)
	assert.Equal(t, bids.StatusActive, ledger[0].Status)
	assert.Equal(t, bids.StatusOutbid, ledger[1].Status)

	assert.Equal(t, 2, countOutboxEvents(t, te.Pool, "bid.placed"))
}

func TestEngine_PlaceBid_RejectionsLeaveNoTrace(t *testing.T) {
	te := setupEngine(t)
	ctx := context.Background()
	seller := uuid.New()

	open := seedAuction(t, te.Pool, seller, 1000, time.Now().Add(time.Hour))
	closed := seedAuction(t, te.Pool, seller, 1000, time.Now().Add(-time.Second))

	_, err := te.Engine.PlaceBid(ctx, bids.PlaceBidCommand{AuctionID: open, BidderID: seller, Amount: 5000})
	assert.ErrorIs(t, err, bids.ErrSellerCannotBid)

	_, err = te.Engine.PlaceBid(ctx, bids.PlaceBidCommand{AuctionID: closed, BidderID: uuid.New(), Amount: 5000})
	assert.ErrorIs(t, err, auctions.ErrAuctionEnded)

	_, err = te.Engine.PlaceBid(ctx, bids.PlaceBidCommand{AuctionID: uuid.New(), BidderID: uuid.New(), Amount: 5000})
	assert.ErrorIs(t, err, auctions.ErrAuctionNotFound)

	for _, id := range []uuid.UUID{open, closed} {
		a, err := te.Auctions.GetAuctionByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, a.CurrentBid)
		assert.Equal(t, 0, a.BidCount)
	}
	assert.Equal(t, 0, countOutboxEvents(t, te.Pool, "bid.placed"))
}

func TestEngine_PlaceBid_IdempotencyKey(t *testing.T) {
	te := setupEngine(t)
	ctx := context.Background()
	auctionID := seedAuction(t, te.Pool, uuid.New(), 1000, time.Now().Add(time.Hour))
	bidder := uuid.New()

	cmd := bids.PlaceBidCommand{AuctionID: auctionID, BidderID: bidder, Amount: 1500, IdempotencyKey: "retry-1"}
	first, err := te.Engine.PlaceBid(ctx, cmd)
	require.NoError(t, err)

	second, err := te.Engine.PlaceBid(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Bid.ID, second.Bid.ID)
	assert.Equal(t, 1, second.BidCount)
	assert.Equal(t, 1, countOutboxEvents(t, te.Pool, "bid.placed"))
}

// TestEngine_PlaceBid_ConcurrentEqualBids races identical bids: exactly one wins
func TestEngine_PlaceBid_ConcurrentEqualBids(t *testing.T) {
	te := setupEngine(t)
	ctx := context.Background()
	auctionID := seedAuction(t, te.Pool, uuid.New(), 1000, time.Now().Add(time.Hour))

	const bidders = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		tooLow   int
	)
	for range bidders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := te.Engine.PlaceBid(ctx, bids.PlaceBidCommand{AuctionID: auctionID, BidderID: uuid.New(), Amount: 2000})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, bids.ErrBidTooLow):
				tooLow++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, bidders-1, tooLow)

	a, err := te.Auctions.GetAuctionByID(ctx, auctionID)
	require.NoError(t, err)
	assert.Equal(t, 1, a.BidCount)
	assert.Equal(t, money.Cents(2000), *a.CurrentBid)
}

// TestEngine_PlaceBid_ConcurrentRisingBids checks the counters stay consistent with the ledger
func TestEngine_PlaceBid_ConcurrentRisingBids(t *testing.T) {
	te := setupEngine(t)
	ctx := context.Background()
	auctionID := seedAuction(t, te.Pool, uuid.New(), 1000, time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(amount money.Cents) {
			defer wg.Done()
			_, _ = te.Engine.PlaceBid(ctx, bids.PlaceBidCommand{AuctionID: auctionID, BidderID: uuid.New(), Amount: amount})
		}(money.Cents(1000 + i*100))
	}
	wg.Wait()

	ledger, err := te.Engine.ListAuctionBids(ctx, auctionID)
	require.NoError(t, err)
	require.NotEmpty(t, ledger)

	var active []*bids.Bid
	maxAmount := money.Cents(0)
	for _, b := range ledger {
		if b.Status == bids.StatusActive {
			active = append(active, b)
		}
		maxAmount = money.Max(maxAmount, b.Amount)
	}
	require.Len(t, active, 1, "exactly one active bid")
	assert.Equal(t, maxAmount, active[0].Amount, "the active bid is the highest")

	a, err := te.Auctions.GetAuctionByID(ctx, auctionID)
	require.NoError(t, err)
	assert.Equal(t, len(ledger), a.BidCount)
	assert.Equal(t, maxAmount, *a.CurrentBid)
	assert.Equal(t, len(ledger), countOutboxEvents(t, te.Pool, "bid.placed"))
}

func TestEngine_UserBidsAndCounts(t *testing.T) {
	te := setupEngine(t)
	ctx := context.Background()
	seller, alice, bob := uuid.New(), uuid.New(), uuid.New()

	winning := seedAuction(t, te.Pool, seller, 1000, time.Now().Add(time.Hour))
	losing := seedAuction(t, te.Pool, seller, 1000, time.Now().Add(time.Hour))

	for _, cmd := range []bids.PlaceBidCommand{
		{AuctionID: winning, BidderID: alice, Amount: 1000},
		{AuctionID: losing, BidderID: alice, Amount: 1000},
		{AuctionID: losing, BidderID: bob, Amount: 1500},
	} {
		_, err := te.Engine.PlaceBid(ctx, cmd)
		require.NoError(t, err)
	}

	_, err := te.Pool.Exec(ctx, `INSERT INTO watchlist (id, user_id, auction_id) VALUES ($1, $2, $3)`, uuid.New(), alice, losing)
	require.NoError(t, err)

	// Close the first auction by hand; the sweep would stamp the same buyer
	_, err = te.Pool.Exec(ctx, `UPDATE auctions SET status = 'ended', buyer_id = $2, final_price = 1000 WHERE id = $1`, winning, alice)
	require.NoError(t, err)

	userBids, err := te.Engine.ListUserBids(ctx, alice)
	require.NoError(t, err)
	require.Len(t, userBids.Won, 1)
	assert.Equal(t, winning, userBids.Won[0].Auction.ID)
	require.Len(t, userBids.Active, 1)
	assert.Equal(t, losing, userBids.Active[0].Auction.ID)
	assert.Empty(t, userBids.Lost)

	counts, err := te.Engine.GetBidCounts(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.ActiveBids)
	assert.Equal(t, 1, counts.WonAuctions)
	assert.Equal(t, 1, counts.Watchlist)
}
