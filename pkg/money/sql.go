package money

import (
	"database/sql/driver"

	"github.com/jackc/pgx/v5/pgtype"
)

// Value stores Cents as a plain integer, never as its "12.50" rendering.
func (c Cents) Value() (driver.Value, error) {
	return int64(c), nil
}

// Int64Value lets pgx encode Cents into bigint columns in any format.
func (c Cents) Int64Value() (pgtype.Int8, error) {
	return pgtype.Int8{Int64: int64(c), Valid: true}, nil
}

// ScanInt64 reads a bigint column back into Cents.
func (c *Cents) ScanInt64(v pgtype.Int8) error {
	if !v.Valid {
		*c = 0
		return nil
	}
	*c = Cents(v.Int64)
	return nil
}
