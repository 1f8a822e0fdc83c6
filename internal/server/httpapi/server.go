// Package httpapi exposes the HTTP/JSON surface of the server: the auth
// endpoints with their filter gates, the secrets CRUD, attachment presigning,
// and the operational endpoints.
package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ndanilenko/passvault/internal/logging"
	"github.com/ndanilenko/passvault/internal/server/auth"
	"github.com/ndanilenko/passvault/internal/server/models"
	"github.com/ndanilenko/passvault/internal/server/services"
)

// TokenVerifier verifies a bearer token of the given type and returns the
// subject's public id. Satisfied by *auth.Codec.
type TokenVerifier interface {
	Verify(tokenString string, typ auth.TokenType) (uuid.UUID, error)
}

// AccountService is the slice of the account layer the handlers need.
type AccountService interface {
	Register(ctx context.Context, email, passwordDigest string) (*models.Account, error)
	VerifyCredentials(ctx context.Context, email, passwordDigest string) (*models.Account, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Account, error)
}

// SessionService is the slice of the session layer the handlers need.
type SessionService interface {
	Login(ctx context.Context, account *models.Account) (*services.LoginResult, error)
	Rotate(ctx context.Context, oldToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, accountID int64) error
}

// SecretService is the slice of the secret layer the handlers need.
type SecretService interface {
	Create(ctx context.Context, accountID int64, kind string, ciphertext, nonce []byte) (*models.Secret, error)
	Get(ctx context.Context, accountID int64, id uuid.UUID) (*models.Secret, error)
	List(ctx context.Context, accountID int64) ([]*models.Secret, error)
	Update(ctx context.Context, accountID int64, id uuid.UUID, kind string, ciphertext, nonce []byte) error
	Delete(ctx context.Context, accountID int64, id uuid.UUID) error
	AttachmentUploadURL(ctx context.Context, accountID int64, secretID uuid.UUID) (string, error)
	AttachmentDownloadURL(ctx context.Context, accountID int64, secretID uuid.UUID) (string, error)
	MarkAttachmentUploaded(ctx context.Context, accountID int64, secretID uuid.UUID) error
}

// LoginLimiter throttles signin attempts.
type LoginLimiter interface {
	Check(ctx context.Context, email, ip string) error
	Increment(ctx context.Context, email, ip string) error
	Reset(ctx context.Context, email, ip string) error
}

// Server holds the handler dependencies and builds the route table.
type Server struct {
	accounts AccountService
	sessions SessionService
	secrets  SecretService
	limiter  LoginLimiter
	verifier TokenVerifier
	logger   logging.Logger
}

// NewServer constructs a Server.
func NewServer(accounts AccountService, sessions SessionService, secrets SecretService,
	limiter LoginLimiter, verifier TokenVerifier, logger logging.Logger) *Server {
	return &Server{
		accounts: accounts,
		sessions: sessions,
		secrets:  secrets,
		limiter:  limiter,
		verifier: verifier,
		logger:   logger,
	}
}

// Routes assembles the route table and the middleware chain. The
// authentication gate covers every route except signup, signin, and refresh;
// on those three the route handler does its own header handling.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/signin", s.handleSignin)
	mux.HandleFunc("GET /auth/refresh", s.handleRefresh)
	mux.Handle("GET /auth/signout", s.requireAuth(http.HandlerFunc(s.handleSignout)))

	mux.Handle("GET /api/secrets", s.requireAuth(http.HandlerFunc(s.handleListSecrets)))
	mux.Handle("POST /api/secrets", s.requireAuth(http.HandlerFunc(s.handleCreateSecret)))
	mux.Handle("GET /api/secrets/{id}", s.requireAuth(http.HandlerFunc(s.handleGetSecret)))
	mux.Handle("PUT /api/secrets/{id}", s.requireAuth(http.HandlerFunc(s.handleUpdateSecret)))
	mux.Handle("DELETE /api/secrets/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteSecret)))
	mux.Handle("POST /api/secrets/{id}/attachment", s.requireAuth(http.HandlerFunc(s.handleAttachmentUpload)))
	mux.Handle("GET /api/secrets/{id}/attachment", s.requireAuth(http.HandlerFunc(s.handleAttachmentDownload)))
	mux.Handle("POST /api/secrets/{id}/attachment/uploaded", s.requireAuth(http.HandlerFunc(s.handleAttachmentUploaded)))

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.withRequestLogging(s.withMetrics(s.authenticate(mux)))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
