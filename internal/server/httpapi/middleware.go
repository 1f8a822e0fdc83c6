package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ndanilenko/passvault/internal/common"
	"github.com/ndanilenko/passvault/internal/server/auth"
)

// authenticate is the access-token gate. It covers every route except
// signup, signin, and refresh: those parse the Authorization header
// themselves. A request without an Authorization header passes through
// unauthenticated; requireAuth downstream decides whether that is allowed.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/signup", "/auth/signin", "/auth/refresh":
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, common.BearerSchemePrefix)
		if !ok || token == "" {
			writeError(w, http.StatusForbidden, "scheme missing or invalid")
			return
		}

		subject, err := s.verifier.Verify(token, auth.TokenAccess)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				writeError(w, http.StatusForbidden, "access token expired")
				return
			}
			writeError(w, http.StatusForbidden, "access token is invalid")
			return
		}

		account, err := s.accounts.GetByPublicID(r.Context(), subject)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				writeError(w, http.StatusForbidden, "account does not exist")
				return
			}
			s.logger.Error(r.Context(), "account lookup failed", "error", err)
			writeError(w, http.StatusForbidden, "access token is invalid")
			return
		}

		ctx := withIdentity(r.Context(), account.Principal(), account.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth raises the 401 for routes that need an authenticated caller.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *loggingResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggingResponseWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

func (w *loggingResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r)

		s.logger.Info(r.Context(), "http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", lrw.status,
			"bytes", lrw.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}

func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r)

		observeRequest(r.Method, lrw.status, time.Since(start))
	})
}
