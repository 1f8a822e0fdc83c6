package models

import (
	"time"

	"github.com/google/uuid"
)

// Secret is a client-side-encrypted record. The server never sees plaintext:
// Ciphertext and Nonce are opaque blobs, Kind is a client-chosen category
// (address, password, site, note).
type Secret struct {
	ID         uuid.UUID
	AccountID  int64
	Kind       string
	Ciphertext []byte
	Nonce      []byte
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Attachment is an encrypted file blob associated with a secret, stored in
// S3-compatible object storage and transferred via presigned URLs.
type Attachment struct {
	SecretID     uuid.UUID
	AccountID    int64
	StorageKey   string
	UploadStatus string
	CreatedAt    time.Time
}

// Attachment upload statuses.
const (
	UploadStatusPending  = "pending"
	UploadStatusUploaded = "uploaded"
)
