package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pkgdb "github.com/floroz/bidmaster/pkg/database"
	"github.com/floroz/bidmaster/pkg/money"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
)

// auctionColumns expects the auctions table to be aliased as a
const auctionColumns = `
	a.id, a.seller_id, a.title, a.category, a.item_condition, a.description,
	a.starting_price, a.reserve_price, a.images, a.duration_days, a.ends_at,
	a.current_bid, a.bid_count, a.status, a.buyer_id, a.final_price,
	a.verified_by, a.verified_at, a.admin_notes, a.rejection_reason, a.rejection_message,
	a.created_at, a.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

// scanAuction reads auctionColumns, followed by any extra destinations
func scanAuction(row scanner, extra ...any) (*auctions.Auction, error) {
	var a auctions.Auction
	dest := []any{
		&a.ID, &a.SellerID, &a.Title, &a.Category, &a.ItemCondition, &a.Description,
		&a.StartingPrice, &a.ReservePrice, &a.Images, &a.DurationDays, &a.EndsAt,
		&a.CurrentBid, &a.BidCount, &a.Status, &a.BuyerID, &a.FinalPrice,
		&a.VerifiedBy, &a.VerifiedAt, &a.AdminNotes, &a.RejectionReason, &a.RejectionMessage,
		&a.CreatedAt, &a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAuctions(rows pgx.Rows) ([]*auctions.Auction, error) {
	defer rows.Close()

	var list []*auctions.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// PostgresAuctionRepository implements the auction record store using pgx
type PostgresAuctionRepository struct {
	pool *pgxpool.Pool // Keep pool for non-transactional reads
}

// NewPostgresAuctionRepository creates a new PostgreSQL auction repository
func NewPostgresAuctionRepository(pool *pgxpool.Pool) *PostgresAuctionRepository {
	return &PostgresAuctionRepository{pool: pool}
}

// CreateAuction inserts a new auction within a transaction
func (r *PostgresAuctionRepository) CreateAuction(ctx context.Context, tx pgx.Tx, a *auctions.Auction) error {
	query := `
		INSERT INTO auctions (
			id, seller_id, title, category, item_condition, description,
			starting_price, reserve_price, images, duration_days, ends_at,
			bid_count, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, $13, $14)
	`
	_, err := tx.Exec(ctx, query,
		a.ID, a.SellerID, a.Title, a.Category, a.ItemCondition, a.Description,
		a.StartingPrice, a.ReservePrice, a.Images, a.DurationDays, a.EndsAt,
		a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert auction: %w", err)
	}
	return nil
}

// GetAuctionByID retrieves an auction by its ID (non-transactional read)
func (r *PostgresAuctionRepository) GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*auctions.Auction, error) {
	return r.getAuctionByID(ctx, r.pool, auctionID, false)
}

// GetAuctionByIDForUpdate retrieves an auction and locks its row until tx ends
func (r *PostgresAuctionRepository) GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auctions.Auction, error) {
	return r.getAuctionByID(ctx, tx, auctionID, true)
}

func (r *PostgresAuctionRepository) getAuctionByID(ctx context.Context, db pkgdb.DBTX, auctionID uuid.UUID, forUpdate bool) (*auctions.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions a WHERE a.id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	a, err := scanAuction(db.QueryRow(ctx, query, auctionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auctions.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return a, nil
}

// ListAuctionsBySeller returns the seller's auctions, newest first
func (r *PostgresAuctionRepository) ListAuctionsBySeller(ctx context.Context, sellerID uuid.UUID) ([]*auctions.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions a WHERE a.seller_id = $1 ORDER BY a.created_at DESC`

	rows, err := r.pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seller auctions: %w", err)
	}
	return collectAuctions(rows)
}

// ListReviewQueue returns pending auctions first, then decisions made since decidedSince
func (r *PostgresAuctionRepository) ListReviewQueue(ctx context.Context, decidedSince time.Time) ([]*auctions.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auctions a
		WHERE a.status = 'pending_verification'
		   OR (a.verified_at >= $1 AND a.status IN ('active', 'rejected', 'more_info'))
		ORDER BY
			CASE WHEN a.status = 'pending_verification' THEN 0 ELSE 1 END,
			a.verified_at DESC NULLS LAST,
			a.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, decidedSince)
	if err != nil {
		return nil, fmt.Errorf("failed to query review queue: %w", err)
	}
	return collectAuctions(rows)
}

// SaveVerification persists an admin decision
func (r *PostgresAuctionRepository) SaveVerification(ctx context.Context, tx pgx.Tx, a *auctions.Auction) error {
	query := `
		UPDATE auctions
		SET status = $2, verified_by = $3, verified_at = $4, admin_notes = $5,
		    rejection_reason = $6, rejection_message = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := tx.Exec(ctx, query,
		a.ID, a.Status, a.VerifiedBy, a.VerifiedAt, a.AdminNotes,
		a.RejectionReason, a.RejectionMessage, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save verification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return auctions.ErrAuctionNotFound
	}
	return nil
}

// MarkSold closes the auction to buyerID, conditioned on it still being active
func (r *PostgresAuctionRepository) MarkSold(ctx context.Context, tx pgx.Tx, auctionID, buyerID uuid.UUID, price money.Cents, endedAt time.Time) (*auctions.Auction, error) {
	query := `
		UPDATE auctions a
		SET status = 'ended', buyer_id = $2, final_price = $3, ends_at = $4, updated_at = $4
		WHERE a.id = $1 AND a.status = 'active'
		RETURNING ` + auctionColumns

	a, err := scanAuction(tx.QueryRow(ctx, query, auctionID, buyerID, price, endedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auctions.ErrAuctionNotActive
		}
		return nil, fmt.Errorf("failed to mark auction sold: %w", err)
	}
	return a, nil
}

// SaveRelist persists the reset lifecycle of a relisted auction
func (r *PostgresAuctionRepository) SaveRelist(ctx context.Context, tx pgx.Tx, a *auctions.Auction) error {
	query := `
		UPDATE auctions
		SET status = $2, duration_days = $3, created_at = $4, ends_at = $5,
		    verified_by = NULL, verified_at = NULL, admin_notes = NULL,
		    rejection_reason = NULL, rejection_message = NULL, updated_at = $6
		WHERE id = $1
	`
	result, err := tx.Exec(ctx, query, a.ID, a.Status, a.DurationDays, a.CreatedAt, a.EndsAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to relist auction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return auctions.ErrAuctionNotFound
	}
	return nil
}

// EndExpiredAuctions transitions every active auction whose window closed
// before now. Rows are locked first, in id order, so the buyer is read after
// any in-flight bid on the same auction has committed.
func (r *PostgresAuctionRepository) EndExpiredAuctions(ctx context.Context, tx pgx.Tx, now time.Time) ([]*auctions.EndedAuction, error) {
	rows, err := tx.Query(ctx, `
		SELECT id FROM auctions
		WHERE status = 'active' AND ends_at < $1
		ORDER BY id
		FOR UPDATE
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to lock expired auctions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan expired auctions: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err = tx.Query(ctx, `
		UPDATE auctions a
		SET status = 'ended',
		    updated_at = $2,
		    buyer_id = (SELECT b.bidder_id FROM bids b WHERE b.auction_id = a.id AND b.status = 'active'),
		    final_price = (SELECT b.amount FROM bids b WHERE b.auction_id = a.id AND b.status = 'active')
		WHERE a.id = ANY($1::uuid[]) AND a.status = 'active'
		RETURNING a.id, a.seller_id, a.buyer_id, a.final_price, a.bid_count, a.ends_at
	`, ids, now)
	if err != nil {
		return nil, fmt.Errorf("failed to end expired auctions: %w", err)
	}
	defer rows.Close()

	var ended []*auctions.EndedAuction
	for rows.Next() {
		var e auctions.EndedAuction
		if err := rows.Scan(&e.ID, &e.SellerID, &e.BuyerID, &e.FinalPrice, &e.BidCount, &e.EndsAt); err != nil {
			return nil, fmt.Errorf("failed to scan ended auction: %w", err)
		}
		ended = append(ended, &e)
	}
	return ended, rows.Err()
}

// ApplyBid refreshes the auction counters from the ledger after a bid is appended
func (r *PostgresAuctionRepository) ApplyBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, amount money.Cents) (int, error) {
	query := `
		UPDATE auctions
		SET current_bid = $2,
		    bid_count = (SELECT COUNT(*) FROM bids WHERE auction_id = $1),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING bid_count
	`
	var bidCount int
	if err := tx.QueryRow(ctx, query, auctionID, amount).Scan(&bidCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, auctions.ErrAuctionNotFound
		}
		return 0, fmt.Errorf("failed to update auction counters: %w", err)
	}
	return bidCount, nil
}
