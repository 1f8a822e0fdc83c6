// Package accountkeys declares the repository contract for per-account
// auxiliary key records.
package accountkeys

import (
	"context"

	"github.com/ndanilenko/passvault/internal/server/models"
)

// Repository manages the 1:1 auxiliary key record of an account.
type Repository interface {
	// Replace stores the key for accountID, overwriting any existing record.
	Replace(ctx context.Context, accountID int64, key string) error

	// Get returns the key record for accountID, or common.ErrorNotFound.
	Get(ctx context.Context, accountID int64) (*models.AccountKey, error)

	// Delete removes the key record. Deleting a missing record is not an
	// error.
	Delete(ctx context.Context, accountID int64) error
}
