// Package secrets provides a PostgreSQL-backed repository for
// client-encrypted secret records.
package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

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

func (r *PostgresRepository) Create(ctx context.Context, secret *models.Secret) error {
	query := `
		INSERT INTO secrets (id, account_id, kind, ciphertext, nonce)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		secret.ID, secret.AccountID, secret.Kind, secret.Ciphertext, secret.Nonce); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, accountID int64, id uuid.UUID) (*models.Secret, error) {
	query := `
		SELECT id, account_id, kind, ciphertext, nonce, version, created_at, updated_at
		FROM secrets
		WHERE id = $1 AND account_id = $2
	`
	secret := &models.Secret{}
	err := r.db.QueryRowContext(ctx, query, id, accountID).
		Scan(&secret.ID, &secret.AccountID, &secret.Kind, &secret.Ciphertext,
			&secret.Nonce, &secret.Version, &secret.CreatedAt, &secret.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return secret, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.Secret, error) {
	query := `
		SELECT id, account_id, kind, ciphertext, nonce, version, created_at, updated_at
		FROM secrets
		WHERE account_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Secret
	for rows.Next() {
		secret := &models.Secret{}
		if err := rows.Scan(&secret.ID, &secret.AccountID, &secret.Kind, &secret.Ciphertext,
			&secret.Nonce, &secret.Version, &secret.CreatedAt, &secret.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, secret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, secret *models.Secret) error {
	query := `
		UPDATE secrets
		SET kind = $3, ciphertext = $4, nonce = $5, version = version + 1, updated_at = now()
		WHERE id = $1 AND account_id = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		secret.ID, secret.AccountID, secret.Kind, secret.Ciphertext, secret.Nonce)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, accountID int64, id uuid.UUID) error {
	query := `
		DELETE FROM secrets
		WHERE id = $1 AND account_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, accountID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
