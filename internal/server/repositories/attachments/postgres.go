// Package attachments provides a PostgreSQL-backed repository for encrypted
// attachment records.
package attachments

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

func (r *PostgresRepository) Upsert(ctx context.Context, attachment *models.Attachment) error {
	query := `
		INSERT INTO attachments (secret_id, account_id, storage_key, upload_status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (secret_id) DO UPDATE
		SET storage_key = EXCLUDED.storage_key, upload_status = EXCLUDED.upload_status
	`
	if _, err := r.db.ExecContext(ctx, query,
		attachment.SecretID, attachment.AccountID, attachment.StorageKey, attachment.UploadStatus); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetBySecretID(ctx context.Context, accountID int64, secretID uuid.UUID) (*models.Attachment, error) {
	query := `
		SELECT secret_id, account_id, storage_key, upload_status, created_at
		FROM attachments
		WHERE secret_id = $1 AND account_id = $2
	`
	attachment := &models.Attachment{}
	err := r.db.QueryRowContext(ctx, query, secretID, accountID).
		Scan(&attachment.SecretID, &attachment.AccountID, &attachment.StorageKey,
			&attachment.UploadStatus, &attachment.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return attachment, nil
}

func (r *PostgresRepository) MarkUploaded(ctx context.Context, accountID int64, secretID uuid.UUID) error {
	query := `
		UPDATE attachments
		SET upload_status = $3
		WHERE secret_id = $1 AND account_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, secretID, accountID, models.UploadStatusUploaded)
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
