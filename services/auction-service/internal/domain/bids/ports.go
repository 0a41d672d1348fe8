package bids

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floroz/bidmaster/pkg/money"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
)

// AuctionStore is the slice of the auction record store the engine needs
type AuctionStore interface {
	// GetAuctionByID retrieves an auction without locking
	GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*auctions.Auction, error)

	// GetAuctionByIDForUpdate locks the auction row until tx ends
	GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auctions.Auction, error)

	// ApplyBid sets current_bid and recomputes bid_count from the ledger.
	// Returns the new bid_count.
	ApplyBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, amount money.Cents) (int, error)
}

// BidRepository defines the interface for the bid ledger
type BidRepository interface {
	// GetActiveBidForUpdate locks and returns the auction's active bid, or nil when there is none
	GetActiveBidForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Bid, error)

	// GetBidByIdempotencyKey returns nil when no bid carries the key
	GetBidByIdempotencyKey(ctx context.Context, tx pgx.Tx, auctionID, bidderID uuid.UUID, key string) (*Bid, error)

	// MarkOutbid flips an active bid to outbid
	MarkOutbid(ctx context.Context, tx pgx.Tx, bidID uuid.UUID) error

	// SaveBid appends a bid within a transaction
	SaveBid(ctx context.Context, tx pgx.Tx, bid *Bid) error

	// ListBidsByAuction returns the ledger newest first
	ListBidsByAuction(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)

	// ListUserBidSummaries groups the bidder's bids per auction. Outcome is left empty.
	ListUserBidSummaries(ctx context.Context, bidderID uuid.UUID) ([]*UserBidSummary, error)
}

// WatchlistCounter reports the size of a user's watchlist
type WatchlistCounter interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}
