package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	pkgdb "github.com/floroz/bidmaster/pkg/database"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/watchlist"
)

const watchlistUniqueConstraint = "uq_watchlist_user_auction"

// PostgresWatchlistRepository implements watchlist.Repository using pgx
type PostgresWatchlistRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresWatchlistRepository creates a new PostgreSQL watchlist repository
func NewPostgresWatchlistRepository(pool *pgxpool.Pool) *PostgresWatchlistRepository {
	return &PostgresWatchlistRepository{pool: pool}
}

func (r *PostgresWatchlistRepository) Add(ctx context.Context, entry *watchlist.Entry) error {
	query := `
		INSERT INTO watchlist (id, user_id, auction_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, entry.ID, entry.UserID, entry.AuctionID, entry.CreatedAt)
	if err != nil {
		if pkgdb.IsUniqueViolation(err, watchlistUniqueConstraint) {
			return watchlist.ErrAlreadyWatching
		}
		return fmt.Errorf("failed to insert watchlist entry: %w", err)
	}
	return nil
}

func (r *PostgresWatchlistRepository) Remove(ctx context.Context, userID, auctionID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM watchlist WHERE user_id = $1 AND auction_id = $2`, userID, auctionID)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return watchlist.ErrNotWatching
	}
	return nil
}

func (r *PostgresWatchlistRepository) Exists(ctx context.Context, userID, auctionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM watchlist WHERE user_id = $1 AND auction_id = $2)`,
		userID, auctionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check watchlist: %w", err)
	}
	return exists, nil
}

func (r *PostgresWatchlistRepository) ListAuctions(ctx context.Context, userID uuid.UUID) ([]*auctions.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM watchlist w
		JOIN auctions a ON a.id = w.auction_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	return collectAuctions(rows)
}

// CountByUser feeds the watchlist badge
func (r *PostgresWatchlistRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM watchlist WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count watchlist: %w", err)
	}
	return count, nil
}
