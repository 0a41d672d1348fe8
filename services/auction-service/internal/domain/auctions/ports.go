package auctions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floroz/bidmaster/pkg/events"
	"github.com/floroz/bidmaster/pkg/money"
)

// AuctionRepository defines the interface for auction persistence
type AuctionRepository interface {
	// CreateAuction inserts a new auction within a transaction
	CreateAuction(ctx context.Context, tx pgx.Tx, auction *Auction) error

	// GetAuctionByID returns ErrAuctionNotFound when the id is unknown
	GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*Auction, error)

	// GetAuctionByIDForUpdate locks the auction row until tx ends.
	// Every mutation of an auction goes through this lock.
	GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Auction, error)

	// ListAuctionsBySeller returns the seller's auctions, newest first
	ListAuctionsBySeller(ctx context.Context, sellerID uuid.UUID) ([]*Auction, error)

	// ListReviewQueue returns pending auctions followed by those decided since decidedSince
	ListReviewQueue(ctx context.Context, decidedSince time.Time) ([]*Auction, error)

	// SaveVerification persists status, verifier stamps and review notes
	SaveVerification(ctx context.Context, tx pgx.Tx, auction *Auction) error

	// MarkSold closes the auction only if it is still active.
	// Returns ErrAuctionNotActive when no row was updated.
	MarkSold(ctx context.Context, tx pgx.Tx, auctionID, buyerID uuid.UUID, price money.Cents, endedAt time.Time) (*Auction, error)

	// SaveRelist persists the reset lifecycle fields of a relisted auction
	SaveRelist(ctx context.Context, tx pgx.Tx, auction *Auction) error

	// EndExpiredAuctions locks every active auction whose window closed
	// before now, stamps the standing bid as the sale and marks them ended.
	EndExpiredAuctions(ctx context.Context, tx pgx.Tx, now time.Time) ([]*EndedAuction, error)
}

// HighestBidReader exposes the ledger's active bid to the lifecycle controller
type HighestBidReader interface {
	// GetHighestBidForUpdate locks the active bid row. Returns nil, nil when the auction has no bids.
	GetHighestBidForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*HighestBid, error)
}

// OutboxWriter stores domain events in the transaction that produced them
type OutboxWriter interface {
	SaveEvent(ctx context.Context, tx pgx.Tx, event *events.OutboxEvent) error
}

// AuctionCache holds short-lived auction snapshots for the public read path
type AuctionCache interface {
	Get(ctx context.Context, auctionID uuid.UUID) (*Auction, bool)
	Set(ctx context.Context, auction *Auction)
	Invalidate(ctx context.Context, auctionIDs ...uuid.UUID)
}

// NopCache disables caching
type NopCache struct{}

func (NopCache) Get(context.Context, uuid.UUID) (*Auction, bool) { return nil, false }
func (NopCache) Set(context.Context, *Auction)                   {}
func (NopCache) Invalidate(context.Context, ...uuid.UUID)        {}
