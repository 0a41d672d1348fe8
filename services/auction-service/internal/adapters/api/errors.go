package api

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/floroz/bidmaster/pkg/auth"
	"github.com/floroz/bidmaster/pkg/money"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/bids"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/watchlist"
)

// MinBidAmountKey carries the smallest acceptable bid on a rejected PlaceBid
const MinBidAmountKey = "x-min-bid-amount"

var (
	errUnavailable = errors.New("service temporarily unavailable, try again")
	errInternal    = errors.New("internal error")
)

var (
	invalidArgument = []error{
		bids.ErrInvalidBidAmount,
		auctions.ErrInvalidAuction,
		auctions.ErrInvalidStartingPrice,
		auctions.ErrInvalidReservePrice,
		auctions.ErrInvalidDuration,
		auctions.ErrInvalidDecision,
		auctions.ErrMissingRejectionDetails,
		money.ErrInvalidAmount,
		money.ErrTooPrecise,
		money.ErrNotPositive,
		money.ErrAmountTooLarge,
	}
	failedPrecondition = []error{
		auctions.ErrAuctionNotActive,
		auctions.ErrAuctionEnded,
		auctions.ErrNoBids,
		auctions.ErrCannotRelist,
		auctions.ErrNotReviewable,
	}
	permissionDenied = []error{
		bids.ErrSellerCannotBid,
		auctions.ErrNotOwner,
		auth.ErrForbidden,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// toConnectError maps domain errors to connect codes. Unexpected errors are
// logged and replaced so store internals never reach the caller.
func toConnectError(logger *slog.Logger, procedure string, err error) error {
	var tooLow *bids.BidTooLowError
	switch {
	case errors.As(err, &tooLow):
		cerr := connect.NewError(connect.CodeFailedPrecondition, err)
		cerr.Meta().Set(MinBidAmountKey, tooLow.MinAmount.String())
		return cerr
	case errors.Is(err, auth.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case isAny(err, invalidArgument):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auctions.ErrAuctionNotFound), errors.Is(err, watchlist.ErrNotWatching):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, watchlist.ErrAlreadyWatching):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case isAny(err, failedPrecondition):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case isAny(err, permissionDenied):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, auctions.ErrStaleState):
		return connect.NewError(connect.CodeAborted, auctions.ErrStaleState)
	case errors.Is(err, auctions.ErrTransient):
		logger.Warn("Transient store failure", "procedure", procedure, "error", err)
		return connect.NewError(connect.CodeUnavailable, errUnavailable)
	default:
		logger.Error("Unhandled error", "procedure", procedure, "error", err)
		return connect.NewError(connect.CodeInternal, errInternal)
	}
}

func invalidID(field string) error {
	return connect.NewError(connect.CodeInvalidArgument, errors.New("invalid "+field))
}
