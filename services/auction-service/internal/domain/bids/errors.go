package bids

import (
	"errors"
	"fmt"

	"github.com/floroz/bidmaster/pkg/money"
)

// Validation errors
var (
	ErrInvalidBidAmount = errors.New("bid amount must be positive")
	ErrSellerCannotBid  = errors.New("seller cannot bid on their own auction")
	ErrBidTooLow        = errors.New("bid amount is below the minimum")
)

// BidTooLowError carries the smallest amount that would have been accepted
type BidTooLowError struct {
	MinAmount money.Cents
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be at least %s", e.MinAmount)
}

func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}
