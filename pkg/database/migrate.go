package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found in fsys and returns
// the number of migrations applied.
func Migrate(ctx context.Context, connStr string, fsys fs.FS) (int, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return 0, fmt.Errorf("failed to open sql db for migrations: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	return len(results), nil
}
