// Package secrets declares the repository contract for client-encrypted
// secret records.
package secrets

import (
	"context"

	"github.com/google/uuid"

	"github.com/ndanilenko/passvault/internal/server/models"
)

// Repository defines persistence operations for secrets. Every operation is
// scoped by the owning account id; a secret belonging to another account is
// indistinguishable from a missing one.
type Repository interface {
	Create(ctx context.Context, secret *models.Secret) error

	GetByID(ctx context.Context, accountID int64, id uuid.UUID) (*models.Secret, error)

	ListByAccount(ctx context.Context, accountID int64) ([]*models.Secret, error)

	// Update replaces ciphertext, nonce and kind, bumping the version.
	// Returns common.ErrorNotFound when no owned row matches.
	Update(ctx context.Context, secret *models.Secret) error

	// Delete removes an owned secret. Returns common.ErrorNotFound when no
	// owned row matches.
	Delete(ctx context.Context, accountID int64, id uuid.UUID) error
}
