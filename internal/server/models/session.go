package models

import "time"

// Session is one outstanding refresh token. Once Used is set the row is dead:
// it never again authorizes rotation and exists only so that reuse of the
// token can be detected.
type Session struct {
	ID        int64
	AccountID int64
	Token     string
	Used      bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
