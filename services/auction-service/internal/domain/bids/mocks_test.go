package bids

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/floroz/bidmaster/pkg/events"
	"github.com/floroz/bidmaster/pkg/money"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
)

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

type MockAuctionStore struct {
	mock.Mock
}

func (m *MockAuctionStore) GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*auctions.Auction, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auctions.Auction), args.Error(1)
}

func (m *MockAuctionStore) GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auctions.Auction, error) {
	args := m.Called(ctx, tx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auctions.Auction), args.Error(1)
}

func (m *MockAuctionStore) ApplyBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, amount money.Cents) (int, error) {
	args := m.Called(ctx, tx, auctionID, amount)
	return args.Int(0), args.Error(1)
}

type MockBidRepository struct {
	mock.Mock
}

func (m *MockBidRepository) GetActiveBidForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Bid, error) {
	args := m.Called(ctx, tx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Bid), args.Error(1)
}

func (m *MockBidRepository) GetBidByIdempotencyKey(ctx context.Context, tx pgx.Tx, auctionID, bidderID uuid.UUID, key string) (*Bid, error) {
	args := m.Called(ctx, tx, auctionID, bidderID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Bid), args.Error(1)
}

func (m *MockBidRepository) MarkOutbid(ctx context.Context, tx pgx.Tx, bidID uuid.UUID) error {
	args := m.Called(ctx, tx, bidID)
	return args.Error(0)
}

func (m *MockBidRepository) SaveBid(ctx context.Context, tx pgx.Tx, bid *Bid) error {
	args := m.Called(ctx, tx, bid)
	return args.Error(0)
}

func (m *MockBidRepository) ListBidsByAuction(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Bid), args.Error(1)
}

func (m *MockBidRepository) ListUserBidSummaries(ctx context.Context, bidderID uuid.UUID) ([]*UserBidSummary, error) {
	args := m.Called(ctx, bidderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*UserBidSummary), args.Error(1)
}

type MockOutbox struct {
	mock.Mock
}

func (m *MockOutbox) SaveEvent(ctx context.Context, tx pgx.Tx, event *events.OutboxEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

type MockWatchlistCounter struct {
	mock.Mock
}

func (m *MockWatchlistCounter) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, auctionID uuid.UUID) (*auctions.Auction, bool) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*auctions.Auction), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, auction *auctions.Auction) {
	m.Called(ctx, auction)
}

func (m *MockCache) Invalidate(ctx context.Context, auctionIDs ...uuid.UUID) {
	m.Called(ctx, auctionIDs)
}
