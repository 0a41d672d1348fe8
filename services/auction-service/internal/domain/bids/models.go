package bids

import (
	"time"

	"github.com/google/uuid"

	"github.com/floroz/bidmaster/pkg/money"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
)

// Status of a bid in the ledger
type Status string

const (
	StatusActive Status = "active"
	StatusOutbid Status = "outbid"
)

// Bid represents an accepted offer. Bids are never deleted; the only change
// a bid ever sees is active -> outbid.
type Bid struct {
	ID             uuid.UUID   `db:"id"`
	AuctionID      uuid.UUID   `db:"auction_id"`
	BidderID       uuid.UUID   `db:"bidder_id"`
	BidderName     string      `db:"bidder_name"`
	Amount         money.Cents `db:"amount"`
	Status         Status      `db:"status"`
	IdempotencyKey *string     `db:"idempotency_key"`
	CreatedAt      time.Time   `db:"created_at"`
}

type PlaceBidCommand struct {
	AuctionID      uuid.UUID
	BidderID       uuid.UUID
	BidderName     string
	Amount         money.Cents
	IdempotencyKey string
}

// PlaceBidResult is the accepted bid plus the auction counters it produced
type PlaceBidResult struct {
	Bid        *Bid
	CurrentBid money.Cents
	BidCount   int
	// Replayed is set when an earlier submission with the same idempotency key is returned
	Replayed bool
}

// UserBidSummary is one auction the user has bid on
type UserBidSummary struct {
	Auction        *auctions.Auction
	HighestAmount  money.Cents
	LastBidAt      time.Time
	BidCount       int
	HoldsActiveBid bool
	Outcome        auctions.BidOutcome
}

// UserBids groups a bidder's auctions by outcome
type UserBids struct {
	Active []*UserBidSummary
	Won    []*UserBidSummary
	Lost   []*UserBidSummary
}

// BidCounts feeds the user dashboard badges
type BidCounts struct {
	ActiveBids  int
	WonAuctions int
	Watchlist   int
}
