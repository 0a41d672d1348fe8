package bids

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/floroz/bidmaster/pkg/database"
	"github.com/floroz/bidmaster/pkg/events"
	"github.com/floroz/bidmaster/pkg/money"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
)

// Engine is the bid acceptance engine and the read side of the bid ledger
type Engine struct {
	txManager    database.TransactionManager
	auctionStore AuctionStore
	bidRepo      BidRepository
	outbox       auctions.OutboxWriter
	watchlist    WatchlistCounter
	cache        auctions.AuctionCache
	minIncrement money.Cents
	now          func() time.Time
}

// NewEngine creates a new bid engine. minIncrement must be positive so that
// equal bids are always rejected.
func NewEngine(
	txManager database.TransactionManager,
	auctionStore AuctionStore,
	bidRepo BidRepository,
	outbox auctions.OutboxWriter,
	watchlist WatchlistCounter,
	cache auctions.AuctionCache,
	minIncrement money.Cents,
) *Engine {
	if cache == nil {
		cache = auctions.NopCache{}
	}
	return &Engine{
		txManager:    txManager,
		auctionStore: auctionStore,
		bidRepo:      bidRepo,
		outbox:       outbox,
		watchlist:    watchlist,
		cache:        cache,
		minIncrement: minIncrement,
		now:          time.Now,
	}
}

// MinimumBid is the smallest acceptable amount given the standing high bid.
// With no bids the starting price applies.
func MinimumBid(startingPrice money.Cents, highest *Bid, increment money.Cents) money.Cents {
	if highest == nil {
		return startingPrice
	}
	return money.Max(startingPrice, highest.Amount+increment)
}

// PlaceBid accepts or rejects a bid. Accepting outbids the previous high
// bid, appends the new one and refreshes the auction counters in a single
// transaction; the auction row lock serializes concurrent bidders.
// A failed write is rolled back and reported, never replayed.
func (e *Engine) PlaceBid(ctx context.Context, cmd PlaceBidCommand) (*PlaceBidResult, error) {
	if cmd.Amount <= 0 {
		return nil, ErrInvalidBidAmount
	}
	key := strings.TrimSpace(cmd.IdempotencyKey)

	tx, err := e.txManager.BeginTx(ctx)
	if err != nil {
		return nil, auctions.WrapStoreError("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // Rollback if commit is not called
	}()

	// Lock the auction row so that only one bid per auction is decided at a time
	auction, err := e.auctionStore.GetAuctionByIDForUpdate(ctx, tx, cmd.AuctionID)
	if err != nil {
		return nil, auctions.WrapStoreError("lock auction", err)
	}

	if key != "" {
		prior, err := e.bidRepo.GetBidByIdempotencyKey(ctx, tx, cmd.AuctionID, cmd.BidderID, key)
		if err != nil {
			return nil, auctions.WrapStoreError("lookup idempotency key", err)
		}
		if prior != nil {
			return &PlaceBidResult{
				Bid:        prior,
				CurrentBid: derefCents(auction.CurrentBid),
				BidCount:   auction.BidCount,
				Replayed:   true,
			}, nil
		}
	}

	now := e.now().UTC()
	if auction.Status != auctions.StatusActive {
		return nil, auctions.ErrAuctionNotActive
	}
	if auction.IsExpired(now) {
		return nil, auctions.ErrAuctionEnded
	}
	if auction.IsOwnedBy(cmd.BidderID) {
		return nil, ErrSellerCannotBid
	}

	highest, err := e.bidRepo.GetActiveBidForUpdate(ctx, tx, auction.ID)
	if err != nil {
		return nil, auctions.WrapStoreError("lock active bid", err)
	}
	if minAmount := MinimumBid(auction.StartingPrice, highest, e.minIncrement); cmd.Amount < minAmount {
		return nil, &BidTooLowError{MinAmount: minAmount}
	}

	if highest != nil {
		if err := e.bidRepo.MarkOutbid(ctx, tx, highest.ID); err != nil {
			return nil, auctions.WrapStoreError("mark outbid", err)
		}
	}

	bid := &Bid{
		ID:         uuid.New(),
		AuctionID:  auction.ID,
		BidderID:   cmd.BidderID,
		BidderName: cmd.BidderName,
		Amount:     cmd.Amount,
		Status:     StatusActive,
		CreatedAt:  now,
	}
	if key != "" {
		bid.IdempotencyKey = &key
	}

	if err := e.bidRepo.SaveBid(ctx, tx, bid); err != nil {
		return nil, auctions.WrapStoreError("save bid", err)
	}

	bidCount, err := e.auctionStore.ApplyBid(ctx, tx, auction.ID, bid.Amount)
	if err != nil {
		return nil, auctions.WrapStoreError("update auction counters", err)
	}

	data := map[string]any{
		"bid_id":      bid.ID.String(),
		"bidder_id":   bid.BidderID.String(),
		"bidder_name": bid.BidderName,
		"amount":      int64(bid.Amount),
		"bid_count":   bidCount,
		"seller_id":   auction.SellerID.String(),
	}
	if highest != nil {
		data["outbid_bidder_id"] = highest.BidderID.String()
		data["outbid_amount"] = int64(highest.Amount)
	}
	event, err := events.NewOutboxEvent(events.NewEnvelope(events.EventTypeBidPlaced, auction.ID, now, data))
	if err != nil {
		return nil, err
	}
	if err := e.outbox.SaveEvent(ctx, tx, event); err != nil {
		return nil, auctions.WrapStoreError("save outbox event", err)
	}

	// If this succeeds, the bid, the counters and the event are saved together
	if err := tx.Commit(ctx); err != nil {
		return nil, auctions.WrapStoreError("commit bid", err)
	}

	e.cache.Invalidate(ctx, auction.ID)

	return &PlaceBidResult{
		Bid:        bid,
		CurrentBid: bid.Amount,
		BidCount:   bidCount,
	}, nil
}

// ListAuctionBids returns the auction's ledger, newest first
func (e *Engine) ListAuctionBids(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error) {
	var list []*Bid
	err := database.RetryRead(ctx, func(ctx context.Context) error {
		if _, err := e.auctionStore.GetAuctionByID(ctx, auctionID); err != nil {
			return err
		}
		var err error
		list, err = e.bidRepo.ListBidsByAuction(ctx, auctionID)
		return err
	})
	if err != nil {
		return nil, auctions.WrapStoreError("list auction bids", err)
	}
	return list, nil
}

// ListUserBids groups the auctions a bidder took part in by outcome
func (e *Engine) ListUserBids(ctx context.Context, bidderID uuid.UUID) (*UserBids, error) {
	summaries, err := e.userSummaries(ctx, bidderID)
	if err != nil {
		return nil, err
	}

	out := &UserBids{}
	for _, s := range summaries {
		switch s.Outcome {
		case auctions.BidOutcomeActive:
			out.Active = append(out.Active, s)
		case auctions.BidOutcomeWon:
			out.Won = append(out.Won, s)
		default:
			out.Lost = append(out.Lost, s)
		}
	}
	return out, nil
}

// GetBidCounts returns the dashboard counters for a user
func (e *Engine) GetBidCounts(ctx context.Context, userID uuid.UUID) (*BidCounts, error) {
	summaries, err := e.userSummaries(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts := &BidCounts{}
	for _, s := range summaries {
		switch s.Outcome {
		case auctions.BidOutcomeActive:
			counts.ActiveBids++
		case auctions.BidOutcomeWon:
			counts.WonAuctions++
		}
	}

	err = database.RetryRead(ctx, func(ctx context.Context) error {
		var err error
		counts.Watchlist, err = e.watchlist.CountByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, auctions.WrapStoreError("count watchlist", err)
	}
	return counts, nil
}

func (e *Engine) userSummaries(ctx context.Context, bidderID uuid.UUID) ([]*UserBidSummary, error) {
	var summaries []*UserBidSummary
	err := database.RetryRead(ctx, func(ctx context.Context) error {
		var err error
		summaries, err = e.bidRepo.ListUserBidSummaries(ctx, bidderID)
		return err
	})
	if err != nil {
		return nil, auctions.WrapStoreError("list user bids", err)
	}

	now := e.now()
	for _, s := range summaries {
		s.Outcome = auctions.ClassifyForBidder(s.Auction, bidderID, s.HoldsActiveBid, now)
	}
	return summaries, nil
}

func derefCents(c *money.Cents) money.Cents {
	if c == nil {
		return 0
	}
	return *c
}
