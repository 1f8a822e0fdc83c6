// Package services contains server-side business logic: account credential
// checks, session lifecycle (login, rotation, logout), and secret storage.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ndanilenko/passvault/internal/common"
	"github.com/ndanilenko/passvault/internal/server/auth"
	"github.com/ndanilenko/passvault/internal/server/models"
	"github.com/ndanilenko/passvault/internal/server/repositories/repomanager"
)

// AccountService handles registration and credential verification. The
// password received from clients is already a hex digest of the real
// password; the server still stores only a bcrypt hash of that digest.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewAccountService constructs an AccountService using repositories.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager) *AccountService {
	return &AccountService{db: db, repomanager: m}
}

// Register creates a new account with role USER and a fresh public id.
// A duplicate email yields common.ErrorAlreadyExists.
func (s *AccountService) Register(ctx context.Context, email, passwordDigest string) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passwordDigest), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	account := &models.Account{
		PublicID:     uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         auth.RoleUser,
	}

	repo := s.repomanager.Accounts(s.db)
	created, err := repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	return created, nil
}

// VerifyCredentials checks email+digest and returns the account on success.
// A missing account and a wrong digest are both common.ErrorUnauthorized, so
// the caller cannot tell which of the two was wrong.
func (s *AccountService) VerifyCredentials(ctx context.Context, email, passwordDigest string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(passwordDigest)) != nil {
		return nil, common.ErrorUnauthorized
	}

	return account, nil
}

// GetByPublicID resolves a verified token subject to the account record.
func (s *AccountService) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByPublicID(ctx, publicID)
}
