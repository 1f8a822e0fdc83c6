package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ndanilenko/passvault/internal/common"
	"github.com/ndanilenko/passvault/internal/server/models"
)

type secretRequest struct {
	Kind       string `json:"kind"`
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
}

type secretResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Ciphertext []byte    `json:"ciphertext"`
	Nonce      []byte    `json:"nonce"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type presignedURLResponse struct {
	URL string `json:"url"`
}

func toSecretResponse(secret *models.Secret) secretResponse {
	return secretResponse{
		ID:         secret.ID.String(),
		Kind:       secret.Kind,
		Ciphertext: secret.Ciphertext,
		Nonce:      secret.Nonce,
		Version:    secret.Version,
		CreatedAt:  secret.CreatedAt,
		UpdatedAt:  secret.UpdatedAt,
	}
}

// secretID extracts and validates the {id} path segment. A malformed id is
// reported the same way as a missing secret so ids are not probeable.
func secretID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "secret not found")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	accountID, ok := accountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	return accountID, true
}

func (s *Server) handleListSecrets(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}

	list, err := s.secrets.List(r.Context(), accountID)
	if err != nil {
		s.logger.Error(r.Context(), "secret list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]secretResponse, 0, len(list))
	for _, secret := range list {
		out = append(out, toSecretResponse(secret))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSecret(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}

	var req secretRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Kind == "" || len(req.Ciphertext) == 0 {
		writeError(w, http.StatusBadRequest, "kind and ciphertext are required")
		return
	}

	secret, err := s.secrets.Create(r.Context(), accountID, req.Kind, req.Ciphertext, req.Nonce)
	if err != nil {
		s.logger.Error(r.Context(), "secret create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toSecretResponse(secret))
}

func (s *Server) handleGetSecret(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}
	id, ok := secretID(w, r)
	if !ok {
		return
	}

	secret, err := s.secrets.Get(r.Context(), accountID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "secret not found")
			return
		}
		s.logger.Error(r.Context(), "secret get failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toSecretResponse(secret))
}

func (s *Server) handleUpdateSecret(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}
	id, ok := secretID(w, r)
	if !ok {
		return
	}

	var req secretRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := s.secrets.Update(r.Context(), accountID, id, req.Kind, req.Ciphertext, req.Nonce); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "secret not found")
			return
		}
		s.logger.Error(r.Context(), "secret update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteSecret(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}
	id, ok := secretID(w, r)
	if !ok {
		return
	}

	if err := s.secrets.Delete(r.Context(), accountID, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "secret not found")
			return
		}
		s.logger.Error(r.Context(), "secret delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttachmentUpload(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}
	id, ok := secretID(w, r)
	if !ok {
		return
	}

	url, err := s.secrets.AttachmentUploadURL(r.Context(), accountID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "secret not found")
			return
		}
		s.logger.Error(r.Context(), "attachment presign failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, presignedURLResponse{URL: url})
}

func (s *Server) handleAttachmentDownload(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}
	id, ok := secretID(w, r)
	if !ok {
		return
	}

	url, err := s.secrets.AttachmentDownloadURL(r.Context(), accountID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "attachment not found")
			return
		}
		s.logger.Error(r.Context(), "attachment presign failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, presignedURLResponse{URL: url})
}

func (s *Server) handleAttachmentUploaded(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.accountID(w, r)
	if !ok {
		return
	}
	id, ok := secretID(w, r)
	if !ok {
		return
	}

	if err := s.secrets.MarkAttachmentUploaded(r.Context(), accountID, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "attachment not found")
			return
		}
		s.logger.Error(r.Context(), "attachment confirm failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "uploaded"})
}
