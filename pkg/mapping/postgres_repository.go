package mapping

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKeyValue implements KeyValue using PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE sso_object_fields (
//	    object_key TEXT NOT NULL,
//	    field      TEXT NOT NULL,
//	    value      TEXT NOT NULL,
//	    PRIMARY KEY (object_key, field)
//	);
type PostgresKeyValue struct {
	db *pgxpool.Pool
}

// NewPostgresKeyValue creates a PostgreSQL-backed key-value store.
func NewPostgresKeyValue(db *pgxpool.Pool) (*PostgresKeyValue, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	return &PostgresKeyValue{db: db}, nil
}

// GetField returns the value of field under key, or ErrFieldNotFound.
func (r *PostgresKeyValue) GetField(ctx context.Context, key, field string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `
		SELECT value
		FROM sso_object_fields
		WHERE object_key = $1 AND field = $2
	`, key, field).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", fmt.Errorf("%w: %s/%s", ErrFieldNotFound, key, field)
		}
		return "", fmt.Errorf("failed to get field: %w", err)
	}
	return value, nil
}

// SetField upserts the value of field under key.
func (r *PostgresKeyValue) SetField(ctx context.Context, key, field, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sso_object_fields (object_key, field, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (object_key, field) DO UPDATE SET value = EXCLUDED.value
	`, key, field, value)
	if err != nil {
		return fmt.Errorf("failed to set field: %w", err)
	}
	return nil
}

// DeleteField removes field under key. Absent fields are a no-op success.
func (r *PostgresKeyValue) DeleteField(ctx context.Context, key, field string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM sso_object_fields
		WHERE object_key = $1 AND field = $2
	`, key, field)
	if err != nil {
		return fmt.Errorf("failed to delete field: %w", err)
	}
	return nil
}
