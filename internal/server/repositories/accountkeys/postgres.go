// Package accountkeys provides a PostgreSQL-backed repository for auxiliary
// key records.
package accountkeys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndanilenko/passvault/internal/common"
	"github.com/ndanilenko/passvault/internal/dbx"
	"github.com/ndanilenko/passvault/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Replace upserts on the account id, which is the primary key. That keeps
// the record strictly 1:1 with the account.
func (r *PostgresRepository) Replace(ctx context.Context, accountID int64, key string) error {
	query := `
		INSERT INTO account_keys (account_id, key)
		VALUES ($1, $2)
		ON CONFLICT (account_id) DO UPDATE SET key = EXCLUDED.key, created_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, accountID, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, accountID int64) (*models.AccountKey, error) {
	query := `
		SELECT account_id, key, created_at
		FROM account_keys
		WHERE account_id = $1
	`
	record := &models.AccountKey{}
	err := r.db.QueryRowContext(ctx, query, accountID).
		Scan(&record.AccountID, &record.Key, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return record, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, accountID int64) error {
	query := `
		DELETE FROM account_keys
		WHERE account_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
