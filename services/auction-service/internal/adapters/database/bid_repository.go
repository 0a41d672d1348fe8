package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/bids"
)

const bidColumns = `id, auction_id, bidder_id, bidder_name, amount, status, idempotency_key, created_at`

func scanBid(row scanner) (*bids.Bid, error) {
	var bid bids.Bid
	err := row.Scan(
		&bid.ID,
		&bid.AuctionID,
		&bid.BidderID,
		&bid.BidderName,
		&bid.Amount,
		&bid.Status,
		&bid.IdempotencyKey,
		&bid.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// PostgresBidRepository implements the bid ledger using pgx
type PostgresBidRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBidRepository creates a new PostgreSQL bid repository
func NewPostgresBidRepository(pool *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{pool: pool}
}

// GetActiveBidForUpdate locks the auction's active bid. Returns nil, nil when there is none.
func (r *PostgresBidRepository) GetActiveBidForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*bids.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_id = $1 AND status = 'active' FOR UPDATE`

	bid, err := scanBid(tx.QueryRow(ctx, query, auctionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active bid: %w", err)
	}
	return bid, nil
}

// GetHighestBidForUpdate exposes the active bid to the lifecycle controller
func (r *PostgresBidRepository) GetHighestBidForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auctions.HighestBid, error) {
	bid, err := r.GetActiveBidForUpdate(ctx, tx, auctionID)
	if err != nil || bid == nil {
		return nil, err
	}
	return &auctions.HighestBid{
		BidID:    bid.ID,
		BidderID: bid.BidderID,
		Amount:   bid.Amount,
	}, nil
}

// GetBidByIdempotencyKey finds an earlier submission of the same bid. Returns nil, nil when none exists.
func (r *PostgresBidRepository) GetBidByIdempotencyKey(ctx context.Context, tx pgx.Tx, auctionID, bidderID uuid.UUID, key string) (*bids.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE auction_id = $1 AND bidder_id = $2 AND idempotency_key = $3
	`
	bid, err := scanBid(tx.QueryRow(ctx, query, auctionID, bidderID, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bid by idempotency key: %w", err)
	}
	return bid, nil
}

// MarkOutbid flips an active bid to outbid
func (r *PostgresBidRepository) MarkOutbid(ctx context.Context, tx pgx.Tx, bidID uuid.UUID) error {
	result, err := tx.Exec(ctx, `UPDATE bids SET status = 'outbid' WHERE id = $1 AND status = 'active'`, bidID)
	if err != nil {
		return fmt.Errorf("failed to mark bid outbid: %w", err)
	}
	if result.RowsAffected() == 0 {
		return auctions.ErrStaleState
	}
	return nil
}

// SaveBid saves a bid within a transaction
func (r *PostgresBidRepository) SaveBid(ctx context.Context, tx pgx.Tx, bid *bids.Bid) error {
	query := `
		INSERT INTO bids (id, auction_id, bidder_id, bidder_name, amount, status, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.Exec(ctx, query,
		bid.ID,
		bid.AuctionID,
		bid.BidderID,
		bid.BidderName,
		bid.Amount,
		bid.Status,
		bid.IdempotencyKey,
		bid.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bid: %w", err)
	}
	return nil
}

// ListBidsByAuction returns the auction's ledger, newest first
func (r *PostgresBidRepository) ListBidsByAuction(ctx context.Context, auctionID uuid.UUID) ([]*bids.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_id = $1 ORDER BY created_at DESC, amount DESC`

	rows, err := r.pool.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids: %w", err)
	}
	defer rows.Close()

	var list []*bids.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		list = append(list, bid)
	}
	return list, rows.Err()
}

// ListUserBidSummaries groups the bidder's bids per auction, most recent activity first
func (r *PostgresBidRepository) ListUserBidSummaries(ctx context.Context, bidderID uuid.UUID) ([]*bids.UserBidSummary, error) {
	query := `
		SELECT ` + auctionColumns + `,
			s.highest_amount, s.last_bid_at, s.bid_count, s.holds_active
		FROM (
			SELECT auction_id,
			       MAX(amount)               AS highest_amount,
			       MAX(created_at)           AS last_bid_at,
			       COUNT(*)                  AS bid_count,
			       BOOL_OR(status = 'active') AS holds_active
			FROM bids
			WHERE bidder_id = $1
			GROUP BY auction_id
		) s
		JOIN auctions a ON a.id = s.auction_id
		ORDER BY s.last_bid_at DESC
	`
	rows, err := r.pool.Query(ctx, query, bidderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user bids: %w", err)
	}
	defer rows.Close()

	var list []*bids.UserBidSummary
	for rows.Next() {
		var s bids.UserBidSummary
		a, err := scanAuction(rows, &s.HighestAmount, &s.LastBidAt, &s.BidCount, &s.HoldsActiveBid)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user bid: %w", err)
		}
		s.Auction = a
		list = append(list, &s)
	}
	return list, rows.Err()
}
