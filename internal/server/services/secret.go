package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ndanilenko/passvault/internal/dbx"
	sc "github.com/ndanilenko/passvault/internal/server/config"
	"github.com/ndanilenko/passvault/internal/server/models"
	"github.com/ndanilenko/passvault/internal/server/repositories/repomanager"
)

// Seams for testing the AWS presign path.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

// SecretService stores client-encrypted secret records and brokers
// attachment uploads/downloads through presigned S3 URLs. Ciphertext is
// opaque to the service.
type SecretService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

// NewSecretService constructs a SecretService.
func NewSecretService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config) *SecretService {
	return &SecretService{db: db, repomanager: m, config: config}
}

// Create stores a new secret for the account and returns it with its id.
func (s *SecretService) Create(ctx context.Context, accountID int64, kind string, ciphertext, nonce []byte) (*models.Secret, error) {
	secret := &models.Secret{
		ID:         uuid.New(),
		AccountID:  accountID,
		Kind:       kind,
		Ciphertext: ciphertext,
		Nonce:      nonce,
		Version:    1,
	}
	if err := s.repomanager.Secrets(s.db).Create(ctx, secret); err != nil {
		return nil, fmt.Errorf("error creating secret: %w", err)
	}
	return secret, nil
}

// Get returns one owned secret.
func (s *SecretService) Get(ctx context.Context, accountID int64, id uuid.UUID) (*models.Secret, error) {
	return s.repomanager.Secrets(s.db).GetByID(ctx, accountID, id)
}

// List returns all secrets of the account.
func (s *SecretService) List(ctx context.Context, accountID int64) ([]*models.Secret, error) {
	return s.repomanager.Secrets(s.db).ListByAccount(ctx, accountID)
}

// Update replaces an owned secret's payload.
func (s *SecretService) Update(ctx context.Context, accountID int64, id uuid.UUID, kind string, ciphertext, nonce []byte) error {
	secret := &models.Secret{
		ID:         id,
		AccountID:  accountID,
		Kind:       kind,
		Ciphertext: ciphertext,
		Nonce:      nonce,
	}
	return s.repomanager.Secrets(s.db).Update(ctx, secret)
}

// Delete removes an owned secret (and, via the schema, its attachment row).
func (s *SecretService) Delete(ctx context.Context, accountID int64, id uuid.UUID) error {
	return s.repomanager.Secrets(s.db).Delete(ctx, accountID, id)
}

// randomStorageKey spreads objects by date to keep bucket listings sane.
func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("accounts/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *SecretService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// AttachmentUploadURL verifies ownership of the secret, records a pending
// attachment, and returns a presigned PUT URL for the encrypted blob.
func (s *SecretService) AttachmentUploadURL(ctx context.Context, accountID int64, secretID uuid.UUID) (string, error) {
	if _, err := s.repomanager.Secrets(s.db).GetByID(ctx, accountID, secretID); err != nil {
		return "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("error creating presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := randomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", fmt.Errorf("error presigning put: %w", err)
	}

	attachment := &models.Attachment{
		SecretID:     secretID,
		AccountID:    accountID,
		StorageKey:   key,
		UploadStatus: models.UploadStatusPending,
	}
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Attachments(tx).Upsert(ctx, attachment)
	}); err != nil {
		return "", fmt.Errorf("error recording attachment: %w", err)
	}

	return req.URL, nil
}

// AttachmentDownloadURL returns a presigned GET URL for the attachment of an
// owned secret.
func (s *SecretService) AttachmentDownloadURL(ctx context.Context, accountID int64, secretID uuid.UUID) (string, error) {
	attachment, err := s.repomanager.Attachments(s.db).GetBySecretID(ctx, accountID, secretID)
	if err != nil {
		return "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("error creating presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &attachment.StorageKey,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", fmt.Errorf("error presigning get: %w", err)
	}

	return req.URL, nil
}

// MarkAttachmentUploaded flips the attachment of an owned secret to
// uploaded.
func (s *SecretService) MarkAttachmentUploaded(ctx context.Context, accountID int64, secretID uuid.UUID) error {
	if err := s.repomanager.Attachments(s.db).MarkUploaded(ctx, accountID, secretID); err != nil {
		return err
	}
	return nil
}
