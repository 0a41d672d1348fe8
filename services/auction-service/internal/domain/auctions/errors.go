package auctions

import (
	"errors"
	"fmt"

	"github.com/floroz/bidmaster/pkg/database"
)

// Validation errors
var (
	ErrInvalidAuction          = errors.New("title, category and item condition are required")
	ErrInvalidStartingPrice    = errors.New("starting price must be positive")
	ErrInvalidReservePrice     = errors.New("reserve price must not be below the starting price")
	ErrInvalidDuration         = errors.New("duration is out of range")
	ErrInvalidDecision         = errors.New("decision must be approve, reject or more_info")
	ErrMissingRejectionDetails = errors.New("rejection requires a reason and a message")
)

// Precondition errors
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrAuctionNotActive = errors.New("auction is not active")
	ErrAuctionEnded     = errors.New("auction has ended")
	ErrNotOwner         = errors.New("only the seller can perform this action")
	ErrNoBids           = errors.New("auction has no bids")
	ErrCannotRelist     = errors.New("only unsold auctions can be relisted")
	ErrNotReviewable    = errors.New("auction is not awaiting verification")
)

var (
	// ErrStaleState means a concurrent transition won; refresh and try again.
	ErrStaleState = errors.New("auction state changed, refresh and try again")
	// ErrTransient wraps store failures that may succeed on a later attempt.
	ErrTransient = errors.New("temporary failure, try again")
)

// WrapStoreError classifies a repository failure. Domain sentinels pass
// through untouched, connection and lock failures become ErrTransient and
// anything else is wrapped with op for context.
func WrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	if database.IsTransient(err) {
		return fmt.Errorf("%w: %s: %w", ErrTransient, op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrAuctionNotFound, ErrAuctionNotActive, ErrAuctionEnded, ErrNotOwner,
		ErrNoBids, ErrCannotRelist, ErrNotReviewable, ErrStaleState, ErrTransient,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
