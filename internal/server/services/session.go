package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndanilenko/passvault/internal/common"
	"github.com/ndanilenko/passvault/internal/dbx"
	"github.com/ndanilenko/passvault/internal/randx"
	"github.com/ndanilenko/passvault/internal/server/auth"
	"github.com/ndanilenko/passvault/internal/server/models"
	"github.com/ndanilenko/passvault/internal/server/repositories/repomanager"
)

// auxKeySize is the number of random bytes behind the auxiliary key
// (hex-encoded, so the transported string is twice as long).
const auxKeySize = 32

// TokenPair bundles a short-lived access token and a rotating refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is everything handed to the client after a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Key          string
}

// SessionService orchestrates the session store and the token codec for
// login, rotation, and logout. It owns the business rules about replay and
// revocation; nothing here is retried, and ambiguous storage outcomes are
// resolved to the defensive path.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
}

// NewSessionService constructs a SessionService.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec) *SessionService {
	return &SessionService{db: db, repomanager: m, codec: codec}
}

// Login mints a fresh token pair and auxiliary key for the account. Any
// pre-existing sessions are removed first: a prior session must not stay
// valid across a fresh login. The refresh token, the cleanup, and the key
// replacement commit in one transaction.
func (s *SessionService) Login(ctx context.Context, account *models.Account) (*LoginResult, error) {
	key, err := randx.MakeRandHexString(auxKeySize)
	if err != nil {
		return nil, common.ErrorInternal
	}

	access, err := s.codec.Issue(account.PublicID, auth.TokenAccess)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.codec.Issue(account.PublicID, auth.TokenRefresh)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		sessionRepo := s.repomanager.Sessions(tx)
		if _, err := sessionRepo.DeleteAllForAccount(ctx, account.ID); err != nil {
			return err
		}
		if err := sessionRepo.Create(ctx, account.ID, refresh); err != nil {
			return err
		}
		return s.repomanager.AccountKeys(tx).Replace(ctx, account.ID, key)
	}); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return &LoginResult{AccessToken: access, RefreshToken: refresh, Key: key}, nil
}

// Rotate exchanges a valid, unused refresh token for a new pair, burning the
// old token. A token that is unknown surfaces as common.ErrorNotFound; a
// token whose session row is already used is a replay
// (common.ErrSessionReplayed) and revokes every session of the account. The
// mark-used and the insert of the replacement commit atomically; if the
// conditional mark-used write hits a row already flipped by a concurrent
// rotation, that also escalates to replay handling.
func (s *SessionService) Rotate(ctx context.Context, oldToken string) (*TokenPair, error) {
	subject, err := s.codec.Verify(oldToken, auth.TokenRefresh)
	if err != nil {
		return nil, err
	}

	record, err := s.repomanager.Sessions(s.db).Find(ctx, oldToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error searching session: %w", err)
	}

	if record.Used {
		return nil, s.handleReplay(ctx, record.AccountID)
	}

	access, err := s.codec.Issue(subject, auth.TokenAccess)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.codec.Issue(subject, auth.TokenRefresh)
	if err != nil {
		return nil, common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		sessionRepo := s.repomanager.Sessions(tx)
		if err := sessionRepo.MarkUsed(ctx, oldToken); err != nil {
			return err
		}
		return sessionRepo.Create(ctx, record.AccountID, refresh)
	})
	if err != nil {
		if errors.Is(err, common.ErrSessionUsed) {
			// Lost the race against a concurrent rotation of the same token.
			return nil, s.handleReplay(ctx, record.AccountID)
		}
		return nil, fmt.Errorf("error rotating session: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// handleReplay revokes every session of the account and reports the replay.
func (s *SessionService) handleReplay(ctx context.Context, accountID int64) error {
	if _, err := s.repomanager.Sessions(s.db).DeleteAllForAccount(ctx, accountID); err != nil {
		return fmt.Errorf("error revoking sessions: %w", err)
	}
	return common.ErrSessionReplayed
}

// Logout removes every session and the auxiliary key of the account. It is
// idempotent: an account with nothing to delete terminates without error.
func (s *SessionService) Logout(ctx context.Context, accountID int64) error {
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Sessions(tx).DeleteAllForAccount(ctx, accountID); err != nil {
			return err
		}
		return s.repomanager.AccountKeys(tx).Delete(ctx, accountID)
	}); err != nil {
		return fmt.Errorf("error removing session: %w", err)
	}
	return nil
}
