// Package repomanager defines the factory that vends repository
// implementations bound to a database handle or transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/ndanilenko/passvault/internal/dbx"
	"github.com/ndanilenko/passvault/internal/server/repositories/accountkeys"
	"github.com/ndanilenko/passvault/internal/server/repositories/accounts"
	"github.com/ndanilenko/passvault/internal/server/repositories/attachments"
	"github.com/ndanilenko/passvault/internal/server/repositories/secrets"
	"github.com/ndanilenko/passvault/internal/server/repositories/sessions"
)

// RepositoryManager vends repositories bound to the provided DBTX, so the
// same repository code runs both outside and inside a transaction.
type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	AccountKeys(db dbx.DBTX) accountkeys.Repository
	Secrets(db dbx.DBTX) secrets.Repository
	Attachments(db dbx.DBTX) attachments.Repository

	// RunMigrations applies schema migrations against the given connection.
	RunMigrations(ctx context.Context, db *sql.DB) error
}
