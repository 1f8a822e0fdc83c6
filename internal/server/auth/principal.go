package auth

import "github.com/google/uuid"

// Role is the single granted role of an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Principal is the authenticated identity attached to a request after a
// successful access-token verification. It carries the account's public
// identifier, never the internal row id, plus the account-state flags as
// they were at verification time. A Principal lives for one request and is
// never persisted.
type Principal struct {
	PublicID           uuid.UUID
	Role               Role
	Enabled            bool
	Locked             bool
	CredentialsExpired bool
	Expired            bool
}
