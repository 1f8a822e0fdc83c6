// Package common defines shared constants and sentinel errors used across
// the passvault server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Session rotation errors. ErrSessionUsed is the conditional-update
	// conflict (the used flag was already set); ErrSessionReplayed is the
	// security event reported to the client after revocation.
	ErrSessionUsed     = errors.New("session already used")
	ErrSessionReplayed = errors.New("refresh token replayed")
)
