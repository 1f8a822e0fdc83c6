package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ndanilenko/passvault/internal/server/auth"
)

// Account is a registered user of the vault. ID is the internal row id and
// never leaves the server; PublicID is the stable opaque identifier used in
// token subjects and API payloads.
type Account struct {
	ID                 int64
	PublicID           uuid.UUID
	Email              string
	PasswordHash       string
	Role               auth.Role
	Enabled            bool
	Locked             bool
	CredentialsExpired bool
	Expired            bool
	CreatedAt          time.Time
}

// Principal builds the request principal for this account, copying the
// account-state flags as of now.
func (a *Account) Principal() *auth.Principal {
	return &auth.Principal{
		PublicID:           a.PublicID,
		Role:               a.Role,
		Enabled:            a.Enabled,
		Locked:             a.Locked,
		CredentialsExpired: a.CredentialsExpired,
		Expired:            a.Expired,
	}
}
