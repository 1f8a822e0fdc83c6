// Package accounts declares the repository contract for account rows.
package accounts

import (
	"context"

	"github.com/google/uuid"

	"github.com/ndanilenko/passvault/internal/server/models"
)

// Repository defines persistence operations for accounts.
type Repository interface {
	// Create inserts a new account and returns it with the generated id.
	// A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByEmail returns the account registered under email, or
	// common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetByPublicID returns the account with the given public identifier,
	// or common.ErrorNotFound.
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Account, error)
}
