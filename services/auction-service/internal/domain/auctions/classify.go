package auctions

import (
	"time"

	"github.com/google/uuid"
)

// Classification is the read-side bucket an auction falls into. It is
// derived, never stored.
type Classification string

const (
	ClassificationScheduled Classification = "scheduled"
	ClassificationActive    Classification = "active"
	ClassificationSold      Classification = "sold"
	ClassificationUnsold    Classification = "unsold"
)

// Classify places an auction in its listing bucket as of now.
//
// An active auction past ends_at that the sweep has not reached yet is
// classified by what the sweep will do to it: sold when a bid is standing,
// unsold otherwise.
func Classify(a *Auction, now time.Time) Classification {
	expired := a.IsExpired(now)

	switch a.Status {
	case StatusPendingVerification:
		if expired {
			return ClassificationUnsold
		}
		return ClassificationScheduled
	case StatusRejected, StatusMoreInfo:
		return ClassificationUnsold
	case StatusEnded:
		if a.BuyerID != nil || a.FinalPrice != nil {
			return ClassificationSold
		}
		return ClassificationUnsold
	case StatusActive:
		if !expired {
			return ClassificationActive
		}
		if a.CurrentBid != nil && a.BidCount > 0 {
			return ClassificationSold
		}
		return ClassificationUnsold
	default:
		return ClassificationUnsold
	}
}

// BidOutcome is how an auction looks from one bidder's side
type BidOutcome string

const (
	BidOutcomeActive BidOutcome = "active"
	BidOutcomeWon    BidOutcome = "won"
	BidOutcomeLost   BidOutcome = "lost"
)

// ClassifyForBidder decides whether the bidder is still in the running,
// has won or has lost. holdsActiveBid tells whether the bidder owns the
// ledger's active bid.
func ClassifyForBidder(a *Auction, bidderID uuid.UUID, holdsActiveBid bool, now time.Time) BidOutcome {
	if a.BuyerID != nil {
		if *a.BuyerID == bidderID {
			return BidOutcomeWon
		}
		return BidOutcomeLost
	}

	expired := a.IsExpired(now)
	switch {
	case a.Status == StatusActive && !expired:
		return BidOutcomeActive
	case a.Status == StatusEnded, a.Status == StatusActive && expired:
		if holdsActiveBid {
			return BidOutcomeWon
		}
		return BidOutcomeLost
	default:
		return BidOutcomeLost
	}
}
