// Package watchlist lets users follow auctions without bidding.
package watchlist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/floroz/bidmaster/pkg/database"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
)

var (
	ErrAlreadyWatching = errors.New("auction is already in the watchlist")
	ErrNotWatching     = errors.New("auction is not in the watchlist")
)

// Entry pairs a user with an auction they follow
type Entry struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	AuctionID uuid.UUID `db:"auction_id"`
	CreatedAt time.Time `db:"created_at"`
}

// Repository defines the interface for watchlist persistence
type Repository interface {
	// Add returns ErrAlreadyWatching when the pair exists
	Add(ctx context.Context, entry *Entry) error
	// Remove returns ErrNotWatching when the pair does not exist
	Remove(ctx context.Context, userID, auctionID uuid.UUID) error
	Exists(ctx context.Context, userID, auctionID uuid.UUID) (bool, error)
	// ListAuctions returns watched auctions, most recently added first
	ListAuctions(ctx context.Context, userID uuid.UUID) ([]*auctions.Auction, error)
}

// AuctionReader confirms an auction exists before it is watched
type AuctionReader interface {
	GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*auctions.Auction, error)
}

type Service struct {
	repo     Repository
	auctions AuctionReader
	now      func() time.Time
}

func NewService(repo Repository, auctionReader AuctionReader) *Service {
	return &Service{
		repo:     repo,
		auctions: auctionReader,
		now:      time.Now,
	}
}

func (s *Service) Add(ctx context.Context, userID, auctionID uuid.UUID) (*Entry, error) {
	if _, err := s.auctions.GetAuctionByID(ctx, auctionID); err != nil {
		return nil, auctions.WrapStoreError("get auction", err)
	}

	entry := &Entry{
		ID:        uuid.New(),
		UserID:    userID,
		AuctionID: auctionID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Add(ctx, entry); err != nil {
		if errors.Is(err, ErrAlreadyWatching) {
			return nil, err
		}
		return nil, auctions.WrapStoreError("add to watchlist", err)
	}
	return entry, nil
}

func (s *Service) Remove(ctx context.Context, userID, auctionID uuid.UUID) error {
	if err := s.repo.Remove(ctx, userID, auctionID); err != nil {
		if errors.Is(err, ErrNotWatching) {
			return err
		}
		return auctions.WrapStoreError("remove from watchlist", err)
	}
	return nil
}

func (s *Service) IsWatching(ctx context.Context, userID, auctionID uuid.UUID) (bool, error) {
	var watching bool
	err := database.RetryRead(ctx, func(ctx context.Context) error {
		var err error
		watching, err = s.repo.Exists(ctx, userID, auctionID)
		return err
	})
	if err != nil {
		return false, auctions.WrapStoreError("check watchlist", err)
	}
	return watching, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*auctions.Auction, error) {
	var list []*auctions.Auction
	err := database.RetryRead(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.repo.ListAuctions(ctx, userID)
		return err
	})
	if err != nil {
		return nil, auctions.WrapStoreError("list watchlist", err)
	}
	return list, nil
}
