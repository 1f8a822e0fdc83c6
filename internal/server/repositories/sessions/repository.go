// Package sessions declares the repository contract for refresh-token
// session rows.
package sessions

import (
	"context"

	"github.com/ndanilenko/passvault/internal/server/models"
)

// Repository defines operations for the durable bookkeeping of refresh
// tokens. MarkUsed is the compare-and-set half of rotation: combined with
// Create inside one transaction it implements the atomic
// mark-used-and-create step.
type Repository interface {
	// Create inserts a new unused session row for accountID.
	Create(ctx context.Context, accountID int64, token string) error

	// Find returns the session row for the given token string, or
	// common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.Session, error)

	// MarkUsed flips used to true only if it is still false, bumping the
	// version counter. If the row was already used (or does not exist) it
	// returns common.ErrSessionUsed; callers must escalate that to replay
	// handling.
	MarkUsed(ctx context.Context, token string) error

	// DeleteAllForAccount removes every session row of the account and
	// returns the number of rows removed.
	DeleteAllForAccount(ctx context.Context, accountID int64) (int64, error)

	// Delete removes a single session row by token string. Deleting a
	// non-existent token is not an error.
	Delete(ctx context.Context, token string) error
}
