// Package attachments declares the repository contract for encrypted
// attachment records.
package attachments

import (
	"context"

	"github.com/google/uuid"

	"github.com/ndanilenko/passvault/internal/server/models"
)

// Repository manages the attachment record of a secret (at most one per
// secret, keyed by the secret id).
type Repository interface {
	// Upsert creates or replaces the attachment record of a secret.
	Upsert(ctx context.Context, attachment *models.Attachment) error

	// GetBySecretID returns the owned attachment record, or
	// common.ErrorNotFound.
	GetBySecretID(ctx context.Context, accountID int64, secretID uuid.UUID) (*models.Attachment, error)

	// MarkUploaded flips the upload status to uploaded. Returns
	// common.ErrorNotFound when no owned row matches.
	MarkUploaded(ctx context.Context, accountID int64, secretID uuid.UUID) error
}
