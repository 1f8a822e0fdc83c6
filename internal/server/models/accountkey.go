package models

import "time"

// AccountKey is the per-account auxiliary key blob clients use to wrap their
// master key. The account id doubles as the primary key, which enforces the
// one-key-per-account invariant.
type AccountKey struct {
	AccountID int64
	Key       string
	CreatedAt time.Time
}
