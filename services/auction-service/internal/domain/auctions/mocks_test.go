package auctions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/floroz/bidmaster/pkg/events"
	"github.com/floroz/bidmaster/pkg/money"
)

// fakeTx records whether the service committed or rolled back
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

type MockAuctionRepository struct {
	mock.Mock
}

func (m *MockAuctionRepository) CreateAuction(ctx context.Context, tx pgx.Tx, auction *Auction) error {
	args := m.Called(ctx, tx, auction)
	return args.Error(0)
}

func (m *MockAuctionRepository) GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*Auction, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Auction), args.Error(1)
}

func (m *MockAuctionRepository) GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Auction, error) {
	args := m.Called(ctx, tx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Auction), args.Error(1)
}

func (m *MockAuctionRepository) ListAuctionsBySeller(ctx context.Context, sellerID uuid.UUID) ([]*Auction, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Auction), args.Error(1)
}

func (m *MockAuctionRepository) ListReviewQueue(ctx context.Context, decidedSince time.Time) ([]*Auction, error) {
	args := m.Called(ctx, decidedSince)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Auction), args.Error(1)
}

func (m *MockAuctionRepository) SaveVerification(ctx context.Context, tx pgx.Tx, auction *Auction) error {
	args := m.Called(ctx, tx, auction)
	return args.Error(0)
}

func (m *MockAuctionRepository) MarkSold(ctx context.Context, tx pgx.Tx, auctionID, buyerID uuid.UUID, price money.Cents, endedAt time.Time) (*Auction, error) {
	args := m.Called(ctx, tx, auctionID, buyerID, price, endedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Auction), args.Error(1)
}

func (m *MockAuctionRepository) SaveRelist(ctx context.Context, tx pgx.Tx, auction *Auction) error {
	args := m.Called(ctx, tx, auction)
	return args.Error(0)
}

func (m *MockAuctionRepository) EndExpiredAuctions(ctx context.Context, tx pgx.Tx, now time.Time) ([]*EndedAuction, error) {
	args := m.Called(ctx, tx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*EndedAuction), args.Error(1)
}

type MockHighestBidReader struct {
	mock.Mock
}

func (m *MockHighestBidReader) GetHighestBidForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*HighestBid, error) {
	args := m.Called(ctx, tx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*HighestBid), args.Error(1)
}

type MockOutbox struct {
	mock.Mock
}

func (m *MockOutbox) SaveEvent(ctx context.Context, tx pgx.Tx, event *events.OutboxEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, auctionID uuid.UUID) (*Auction, bool) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*Auction), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, auction *Auction) {
	m.Called(ctx, auction)
}

func (m *MockCache) Invalidate(ctx context.Context, auctionIDs ...uuid.UUID) {
	m.Called(ctx, auctionIDs)
}
