package httpapi

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/ndanilenko/passvault/internal/common"
	"github.com/ndanilenko/passvault/internal/server/rate"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` // pre-hashed hex digest, never a plaintext password
}

type signupResponse struct {
	PublicID string `json:"publicId"`
}

type signinResponse struct {
	PublicID     string `json:"publicId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Key          string `json:"key"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	account, err := s.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeError(w, http.StatusConflict, "account already exists")
			return
		}
		s.logger.Error(r.Context(), "signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{PublicID: account.PublicID.String()})
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	ip := remoteIP(r)
	if err := s.limiter.Check(r.Context(), req.Email, ip); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			writeError(w, http.StatusTooManyRequests, "too many attempts")
			return
		}
		// A throttle outage must not lock everyone out.
		s.logger.Error(r.Context(), "rate limiter check failed", "error", err)
	}

	account, err := s.accounts.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			if incErr := s.limiter.Increment(r.Context(), req.Email, ip); incErr != nil && !errors.Is(incErr, rate.ErrRateLimited) {
				s.logger.Error(r.Context(), "rate limiter increment failed", "error", incErr)
			}
			writeError(w, http.StatusUnauthorized, "email or password invalid")
			return
		}
		s.logger.Error(r.Context(), "credential check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.limiter.Reset(r.Context(), req.Email, ip); err != nil {
		s.logger.Error(r.Context(), "rate limiter reset failed", "error", err)
	}

	result, err := s.sessions.Login(r.Context(), account)
	if err != nil {
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, signinResponse{
		PublicID:     account.PublicID.String(),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Key:          result.Key,
	})
}

// handleRefresh is the refresh-token gate: it parses the bearer header
// itself and maps every token problem to a 403 with its own message. A used
// token is a replay and has already cost the account all its sessions by the
// time the response is written.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get(common.AuthorizationHeaderName)
	if header == "" {
		writeError(w, http.StatusForbidden, "required header is missing")
		return
	}
	token, ok := strings.CutPrefix(header, common.BearerSchemePrefix)
	if !ok || token == "" {
		writeError(w, http.StatusForbidden, "scheme missing or invalid")
		return
	}

	pair, err := s.sessions.Rotate(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
			writeError(w, http.StatusForbidden, "token is not valid")
		case errors.Is(err, common.ErrorNotFound):
			writeError(w, http.StatusForbidden, "given token does not exist")
		case errors.Is(err, common.ErrSessionReplayed):
			writeError(w, http.StatusForbidden, "security exception: server detected that the same token has been used again")
		default:
			s.logger.Error(r.Context(), "rotation failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleSignout(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := s.sessions.Logout(r.Context(), accountID); err != nil {
		s.logger.Error(r.Context(), "signout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
