package auctions

import (
	"time"

	"github.com/google/uuid"

	"github.com/floroz/bidmaster/pkg/money"
)

// Status is the stored lifecycle state of an auction
type Status string

const (
	StatusPendingVerification Status = "pending_verification"
	StatusActive              Status = "active"
	StatusRejected            Status = "rejected"
	StatusMoreInfo            Status = "more_info"
	StatusEnded               Status = "ended"
)

// Decision is an admin verification outcome
type Decision string

const (
	DecisionApprove  Decision = "approve"
	DecisionReject   Decision = "reject"
	DecisionMoreInfo Decision = "more_info"
)

// Auction represents a listing and its bidding window
type Auction struct {
	ID               uuid.UUID    `db:"id"`
	SellerID         uuid.UUID    `db:"seller_id"`
	Title            string       `db:"title"`
	Category         string       `db:"category"`
	ItemCondition    string       `db:"item_condition"`
	Description      string       `db:"description"`
	StartingPrice    money.Cents  `db:"starting_price"`
	ReservePrice     *money.Cents `db:"reserve_price"`
	Images           []string     `db:"images"`
	DurationDays     int          `db:"duration_days"`
	EndsAt           time.Time    `db:"ends_at"`
	CurrentBid       *money.Cents `db:"current_bid"`
	BidCount         int          `db:"bid_count"`
	Status           Status       `db:"status"`
	BuyerID          *uuid.UUID   `db:"buyer_id"`
	FinalPrice       *money.Cents `db:"final_price"`
	VerifiedBy       *uuid.UUID   `db:"verified_by"`
	VerifiedAt       *time.Time   `db:"verified_at"`
	AdminNotes       *string      `db:"admin_notes"`
	RejectionReason  *string      `db:"rejection_reason"`
	RejectionMessage *string      `db:"rejection_message"`
	CreatedAt        time.Time    `db:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at"`
}

// IsExpired reports whether the bidding window has closed at now.
func (a *Auction) IsExpired(now time.Time) bool {
	return !now.Before(a.EndsAt)
}

// IsOwnedBy reports whether userID is the seller.
func (a *Auction) IsOwnedBy(userID uuid.UUID) bool {
	return a.SellerID == userID
}

// HighestBid is the ledger's active bid as seen by the lifecycle controller
type HighestBid struct {
	BidID    uuid.UUID
	BidderID uuid.UUID
	Amount   money.Cents
}

// EndedAuction is one row transitioned by the expiry sweep
type EndedAuction struct {
	ID         uuid.UUID
	SellerID   uuid.UUID
	BuyerID    *uuid.UUID
	FinalPrice *money.Cents
	BidCount   int
	EndsAt     time.Time
}

// ReviewQueue is what the admin review screen shows
type ReviewQueue struct {
	Pending         []*Auction
	RecentlyDecided []*Auction
}

// SellerListings groups a seller's auctions by classification
type SellerListings struct {
	Scheduled []*Auction
	Active    []*Auction
	Sold      []*Auction
	Unsold    []*Auction
}

type CreateAuctionCommand struct {
	SellerID      uuid.UUID
	Title         string
	Category      string
	ItemCondition string
	Description   string
	StartingPrice money.Cents
	ReservePrice  *money.Cents
	Images        []string
	DurationDays  int
}

type DecideVerificationCommand struct {
	AuctionID        uuid.UUID
	AdminID          uuid.UUID
	Decision         Decision
	AdminNotes       string
	RejectionReason  string
	RejectionMessage string
}

type SellNowCommand struct {
	AuctionID uuid.UUID
	SellerID  uuid.UUID
}

type RelistCommand struct {
	AuctionID    uuid.UUID
	SellerID     uuid.UUID
	DurationDays int
}
