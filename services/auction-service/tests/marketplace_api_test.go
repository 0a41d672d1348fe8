//go:build integration

package tests

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floroz/bidmaster/pkg/auth"
	"github.com/floroz/bidmaster/pkg/events"
	marketplacev1 "github.com/floroz/bidmaster/pkg/rpc/marketplacev1"
	"github.com/floroz/bidmaster/pkg/testhelpers"
	"github.com/floroz/bidmaster/services/auction-service/internal/adapters/api"
	"github.com/floroz/bidmaster/services/auction-service/migrations"
)

func connectCode(t *testing.T, err error) connect.Code {
	t.Helper()
	require.Error(t, err)
	var cerr *connect.Error
	require.True(t, errors.As(err, &cerr), "expected a connect error, got %v", err)
	return cerr.Code()
}

func TestAPI_AuctionLifecycle(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, migrations.FS)
	defer testDB.Close()

	client, tokens := setupApp(t, testDB.Pool)
	ctx := context.Background()

	sellerID, aliceID, bobID, adminID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	sellerToken := tokens.token(t, sellerID, "Sam Seller")
	aliceToken := tokens.token(t, aliceID, "Alice")
	bobToken := tokens.token(t, bobID, "Bob")
	adminToken := tokens.token(t, adminID, "Ada Admin", auth.PermissionVerifyAuctions)

	// Submit a listing
	created, err := client.CreateAuction(ctx, authed(sellerToken, &marketplacev1.CreateAuctionRequest{
		Title:         "Vintage camera",
		Category:      "electronics",
		ItemCondition: "used",
		StartingPrice: "10.00",
		DurationDays:  7,
	}))
	require.NoError(t, err)
	auction := created.Msg.Auction
	require.NotNil(t, auction)
	assert.Equal(t, "pending_verification", auction.Status)
	assert.Equal(t, "scheduled", auction.Classification)
	assert.Equal(t, "10.00", auction.StartingPrice)
	assert.Equal(t, []string{"https://img.example.com/placeholder.png"}, auction.Images)
	assert.Equal(t, sellerID.String(), auction.SellerID)

	t.Run("bids on an unverified auction are refused", func(t *testing.T) {
		_, err := client.PlaceBid(ctx, authed(aliceToken, &marketplacev1.PlaceBidRequest{
			AuctionID: auction.ID,
			Amount:    "10.00",
		}))
		assert.Equal(t, connect.CodeFailedPrecondition, connectCode(t, err))
	})

	t.Run("verification needs the verify permission", func(t *testing.T) {
		_, err := client.DecideVerification(ctx, authed(sellerToken, &marketplacev1.DecideVerificationRequest{
			AuctionID: auction.ID,
			Decision:  "approve",
		}))
		assert.Equal(t, connect.CodePermissionDenied, connectCode(t, err))

		_, err = client.ListReviewQueue(ctx, authed(aliceToken, &marketplacev1.ListReviewQueueRequest{}))
		assert.Equal(t, connect.CodePermissionDenied, connectCode(t, err))
	})

	t.Run("review queue lists the pending auction", func(t *testing.T) {
		resp, err := client.ListReviewQueue(ctx, authed(adminToken, &marketplacev1.ListReviewQueueRequest{}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Pending, 1)
		assert.Equal(t, auction.ID, resp.Msg.Pending[0].ID)
	})

	t.Run("admin approves the auction", func(t *testing.T) {
		resp, err := client.DecideVerification(ctx, authed(adminToken, &marketplacev1.DecideVerificationRequest{
			AuctionID:  auction.ID,
			Decision:   "approve",
			AdminNotes: "looks genuine",
		}))
		require.NoError(t, err)
		assert.Equal(t, "active", resp.Msg.Auction.Status)
		assert.Equal(t, "active", resp.Msg.Auction.Classification)
		assert.Equal(t, adminID.String(), resp.Msg.Auction.VerifiedBy)
		assert.Equal(t, 1, countOutboxEvents(t, testDB.Pool, events.EventTypeAuctionVerified))
	})

	t.Run("seller cannot bid on their own auction", func(t *testing.T) {
		_, err := client.PlaceBid(ctx, authed(sellerToken, &marketplacev1.PlaceBidRequest{
			AuctionID: auction.ID,
			Amount:    "50.00",
		}))
		assert.Equal(t, connect.CodePermissionDenied, connectCode(t, err))
	})

	t.Run("bids climb and the minimum is reported", func(t *testing.T) {
		first, err := client.PlaceBid(ctx, authed(aliceToken, &marketplacev1.PlaceBidRequest{
			AuctionID: auction.ID,
			Amount:    "10.00",
		}))
		require.NoError(t, err)
		assert.Equal(t, "10.00", first.Msg.CurrentBid)
		assert.Equal(t, int32(1), first.Msg.BidCount)
		assert.Equal(t, "Alice", first.Msg.Bid.BidderName)

		_, err = client.PlaceBid(ctx, authed(bobToken, &marketplacev1.PlaceBidRequest{
			AuctionID: auction.ID,
			Amount:    "10.50",
		}))
		require.Error(t, err)
		var cerr *connect.Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, connect.CodeFailedPrecondition, cerr.Code())
		assert.Equal(t, "11.00", cerr.Meta().Get(api.MinBidAmountKey))

		second, err := client.PlaceBid(ctx, authed(bobToken, &marketplacev1.PlaceBidRequest{
			AuctionID: auction.ID,
			Amount:    "11.00",
		}))
		require.NoError(t, err)
		assert.Equal(t, "11.00", second.Msg.CurrentBid)
		assert.Equal(t, int32(2), second.Msg.BidCount)
	})

	t.Run("malformed amounts are invalid arguments", func(t *testing.T) {
		_, err := client.PlaceBid(ctx, authed(bobToken, &marketplacev1.PlaceBidRequest{
			AuctionID: auction.ID,
			Amount:    "12.345",
		}))
		assert.Equal(t, connect.CodeInvalidArgument, connectCode(t, err))
	})

	t.Run("public reads work without a token", func(t *testing.T) {
		got, err := client.GetAuction(ctx, connect.NewRequest(&marketplacev1.GetAuctionRequest{AuctionID: auction.ID}))
		require.NoError(t, err)
		assert.Equal(t, "11.00", got.Msg.Auction.CurrentBid)
		assert.Equal(t, int32(2), got.Msg.Auction.BidCount)

		ledger, err := client.ListAuctionBids(ctx, connect.NewRequest(&marketplacev1.ListAuctionBidsRequest{AuctionID: auction.ID}))
		require.NoError(t, err)
		require.Len(t, ledger.Msg.Bids, 2)
		assert.Equal(t, "11.00", ledger.Msg.Bids[0].Amount)
		assert.Equal(t, "active", ledger.Msg.Bids[0].Status)
		assert.Equal(t, "outbid", ledger.Msg.Bids[1].Status)
	})

	t.Run("protected procedures need a token", func(t *testing.T) {
		_, err := client.PlaceBid(ctx, connect.NewRequest(&marketplacev1.PlaceBidRequest{
			AuctionID: auction.ID,
			Amount:    "20.00",
		}))
		assert.Equal(t, connect.CodeUnauthenticated, connectCode(t, err))

		_, err = client.PlaceBid(ctx, authed("not-a-token", &marketplacev1.PlaceBidRequest{
			AuctionID: auction.ID,
			Amount:    "20.00",
		}))
		assert.Equal(t, connect.CodeUnauthenticated, connectCode(t, err))
	})

	t.Run("watchlist round trip", func(t *testing.T) {
		added, err := client.AddToWatchlist(ctx, authed(aliceToken, &marketplacev1.WatchlistRequest{AuctionID: auction.ID}))
		require.NoError(t, err)
		assert.True(t, added.Msg.Watching)

		_, err = client.AddToWatchlist(ctx, authed(aliceToken, &marketplacev1.WatchlistRequest{AuctionID: auction.ID}))
		assert.Equal(t, connect.CodeAlreadyExists, connectCode(t, err))

		check, err := client.CheckWatchlist(ctx, authed(aliceToken, &marketplacev1.WatchlistRequest{AuctionID: auction.ID}))
		require.NoError(t, err)
		assert.True(t, check.Msg.Watching)

		list, err := client.ListWatchlist(ctx, authed(aliceToken, &marketplacev1.ListWatchlistRequest{}))
		require.NoError(t, err)
		require.Len(t, list.Msg.Auctions, 1)

		counts, err := client.GetBidCounts(ctx, authed(aliceToken, &marketplacev1.GetBidCountsRequest{}))
		require.NoError(t, err)
		assert.Equal(t, int32(1), counts.Msg.ActiveBids, "an outbid bidder is still in a running auction")
		assert.Equal(t, int32(1), counts.Msg.Watchlist)

		removed, err := client.RemoveFromWatchlist(ctx, authed(aliceToken, &marketplacev1.WatchlistRequest{AuctionID: auction.ID}))
		require.NoError(t, err)
		assert.False(t, removed.Msg.Watching)

		_, err = client.RemoveFromWatchlist(ctx, authed(aliceToken, &marketplacev1.WatchlistRequest{AuctionID: auction.ID}))
		assert.Equal(t, connect.CodeNotFound, connectCode(t, err))
	})

	t.Run("only the seller can sell now", func(t *testing.T) {
		_, err := client.SellNow(ctx, authed(aliceToken, &marketplacev1.SellNowRequest{AuctionID: auction.ID}))
		assert.Equal(t, connect.CodePermissionDenied, connectCode(t, err))
	})

	t.Run("seller sells to the highest bidder", func(t *testing.T) {
		resp, err := client.SellNow(ctx, authed(sellerToken, &marketplacev1.SellNowRequest{AuctionID: auction.ID}))
		require.NoError(t, err)
		sold := resp.Msg.Auction
		assert.Equal(t, "ended", sold.Status)
		assert.Equal(t, "sold", sold.Classification)
		assert.Equal(t, bobID.String(), sold.BuyerID)
		assert.Equal(t, "11.00", sold.FinalPrice)
		assert.Equal(t, 1, countOutboxEvents(t, testDB.Pool, events.EventTypeAuctionSold))

		_, err = client.PlaceBid(ctx, authed(aliceToken, &marketplacev1.PlaceBidRequest{
			AuctionID: auction.ID,
			Amount:    "30.00",
		}))
		assert.Equal(t, connect.CodeFailedPrecondition, connectCode(t, err))
	})

	t.Run("bidders see their outcome", func(t *testing.T) {
		bobBids, err := client.ListMyBids(ctx, authed(bobToken, &marketplacev1.ListMyBidsRequest{}))
		require.NoError(t, err)
		require.Len(t, bobBids.Msg.Won, 1)
		assert.Equal(t, "won", bobBids.Msg.Won[0].Outcome)
		assert.Empty(t, bobBids.Msg.Active)

		aliceBids, err := client.ListMyBids(ctx, authed(aliceToken, &marketplacev1.ListMyBidsRequest{}))
		require.NoError(t, err)
		require.Len(t, aliceBids.Msg.Lost, 1)
		assert.Equal(t, "10.00", aliceBids.Msg.Lost[0].HighestAmount)

		counts, err := client.GetBidCounts(ctx, authed(bobToken, &marketplacev1.GetBidCountsRequest{}))
		require.NoError(t, err)
		assert.Equal(t, int32(1), counts.Msg.WonAuctions)
	})

	t.Run("sold auctions cannot be relisted", func(t *testing.T) {
		_, err := client.RelistAuction(ctx, authed(sellerToken, &marketplacev1.RelistAuctionRequest{
			AuctionID:    auction.ID,
			DurationDays: 3,
		}))
		assert.Equal(t, connect.CodeFailedPrecondition, connectCode(t, err))
	})

	t.Run("seller dashboard buckets", func(t *testing.T) {
		resp, err := client.ListMyAuctions(ctx, authed(sellerToken, &marketplacev1.ListMyAuctionsRequest{}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Sold, 1)
		assert.Empty(t, resp.Msg.Active)
		assert.Empty(t, resp.Msg.Scheduled)
	})
}

func TestAPI_RelistUnsoldAuction(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, migrations.FS)
	defer testDB.Close()

	client, tokens := setupApp(t, testDB.Pool)
	ctx := context.Background()

	sellerToken := tokens.token(t, uuid.New(), "Sam Seller")
	adminToken := tokens.token(t, uuid.New(), "Ada Admin", auth.PermissionVerifyAuctions)

	created, err := client.CreateAuction(ctx, authed(sellerToken, &marketplacev1.CreateAuctionRequest{
		Title:         "Desk lamp",
		Category:      "home",
		ItemCondition: "new",
		StartingPrice: "25",
		DurationDays:  1,
	}))
	require.NoError(t, err)
	auctionID := created.Msg.Auction.ID

	_, err = client.DecideVerification(ctx, authed(adminToken, &marketplacev1.DecideVerificationRequest{
		AuctionID: auctionID,
		Decision:  "approve",
	}))
	require.NoError(t, err)

	expireAuction(t, testDB.Pool, auctionID)

	got, err := client.GetAuction(ctx, connect.NewRequest(&marketplacev1.GetAuctionRequest{AuctionID: auctionID}))
	require.NoError(t, err)
	assert.Equal(t, "unsold", got.Msg.Auction.Classification)

	relisted, err := client.RelistAuction(ctx, authed(sellerToken, &marketplacev1.RelistAuctionRequest{
		AuctionID:    auctionID,
		DurationDays: 5,
	}))
	require.NoError(t, err)
	assert.Equal(t, "pending_verification", relisted.Msg.Auction.Status)
	assert.Equal(t, "scheduled", relisted.Msg.Auction.Classification)
	assert.Equal(t, int32(5), relisted.Msg.Auction.DurationDays)
	assert.Equal(t, 1, countOutboxEvents(t, testDB.Pool, events.EventTypeAuctionRelisted))
}

func TestAPI_RejectionNeedsDetails(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, migrations.FS)
	defer testDB.Close()

	client, tokens := setupApp(t, testDB.Pool)
	ctx := context.Background()

	sellerToken := tokens.token(t, uuid.New(), "Sam Seller")
	adminToken := tokens.token(t, uuid.New(), "Ada Admin", auth.PermissionVerifyAuctions)

	created, err := client.CreateAuction(ctx, authed(sellerToken, &marketplacev1.CreateAuctionRequest{
		Title:         "Replica watch",
		Category:      "jewellery",
		ItemCondition: "new",
		StartingPrice: "99.99",
		DurationDays:  3,
	}))
	require.NoError(t, err)
	auctionID := created.Msg.Auction.ID

	_, err = client.DecideVerification(ctx, authed(adminToken, &marketplacev1.DecideVerificationRequest{
		AuctionID: auctionID,
		Decision:  "reject",
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connectCode(t, err))

	resp, err := client.DecideVerification(ctx, authed(adminToken, &marketplacev1.DecideVerificationRequest{
		AuctionID:        auctionID,
		Decision:         "reject",
		RejectionReason:  "counterfeit",
		RejectionMessage: "Branded replicas are not allowed.",
	}))
	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Msg.Auction.Status)
	assert.Equal(t, "unsold", resp.Msg.Auction.Classification)
	assert.Equal(t, "counterfeit", resp.Msg.Auction.RejectionReason)

	_, err = client.GetAuction(ctx, connect.NewRequest(&marketplacev1.GetAuctionRequest{AuctionID: uuid.NewString()}))
	assert.Equal(t, connect.CodeNotFound, connectCode(t, err))

	_, err = client.GetAuction(ctx, connect.NewRequest(&marketplacev1.GetAuctionRequest{AuctionID: "nope"}))
	assert.Equal(t, connect.CodeInvalidArgument, connectCode(t, err))
}
