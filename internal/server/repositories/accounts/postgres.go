// Package accounts provides a PostgreSQL-backed repository for account rows.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ndanilenko/passvault/internal/common"
	"github.com/ndanilenko/passvault/internal/dbx"
	"github.com/ndanilenko/passvault/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (public_id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, enabled, locked, credentials_expired, expired, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.PublicID, account.Email, account.PasswordHash, account.Role).
		Scan(&account.ID, &account.Enabled, &account.Locked, &account.CredentialsExpired, &account.Expired, &account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, public_id, email, password_hash, role,
		       enabled, locked, credentials_expired, expired, created_at
		FROM accounts
		WHERE email = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Account, error) {
	query := `
		SELECT id, public_id, email, password_hash, role,
		       enabled, locked, credentials_expired, expired, created_at
		FROM accounts
		WHERE public_id = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, publicID))
}

func (r *PostgresRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(&account.ID, &account.PublicID, &account.Email, &account.PasswordHash, &account.Role,
		&account.Enabled, &account.Locked, &account.CredentialsExpired, &account.Expired, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}
