// Package server is a development game API: authentication, submissions and
// the admin routes, without any program evaluation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pacman/internal/contract"
	"pacman/internal/logging"
	"pacman/internal/ratelimit"
	"pacman/internal/store"
)

// Cookie names carrying credentials after POST /api/authenticate.
const (
	CookieUser     = "user"
	CookiePassword = "password"

	credentialMaxAge  = 24 * 60 * 60
	missingCredential = "<missing>"
)

// Server serves the game API.
type Server struct {
	game       *Game
	users      *Directory
	adminToken string
	logger     *zap.Logger
}

// New creates a server. A nil logger discards access logs.
func New(game *Game, users *Directory, adminToken string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{game: game, users: users, adminToken: adminToken, logger: logger}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/authenticate", s.handleAuthenticate)
	mux.HandleFunc("POST /api/submit", s.handleSubmit)
	mux.HandleFunc("GET /api/submissions", s.handleSubmissions)
	mux.HandleFunc("GET /api/submissions/{id}", s.handleSubmission)
	mux.HandleFunc("POST /api/admin/levelstate", s.handleLevelState)
	mux.HandleFunc("POST /api/admin/reset", s.handleReset)
	mux.HandleFunc("POST /api/admin/ratelimit", s.handleRateLimit)
	return s.withRequestID(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		logging.Server("listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return err
	}
	<-errCh
	s.logger.Info("server stopped")
	logging.Server("server stopped")
	return nil
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type ctxKey struct{}

// RequestID returns the correlation id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
		elapsed := time.Since(start)

		s.logger.Debug("request",
			zap.String("req", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
		logging.WithRequestID(logging.CategoryServer, id).
			WithField("status", rec.status).
			Debug("%s %s in %v", r.Method, r.URL.Path, elapsed)
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var auth contract.Authenticate
	if !s.decode(w, r, &auth) {
		return
	}
	if !s.users.Check(auth.User, auth.Password) {
		s.requestLog(r).Info("authentication failed for %s", auth.User)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: CookieUser, Value: auth.User, Path: "/", MaxAge: credentialMaxAge})
	http.SetCookie(w, &http.Cookie{Name: CookiePassword, Value: auth.Password, Path: "/", MaxAge: credentialMaxAge})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var submit contract.Submit
	if !s.decode(w, r, &submit) {
		return
	}

	user := credential(r, CookieUser, submit.User)
	password := credential(r, CookiePassword, submit.Password)
	if !s.users.Check(user, password) {
		s.requestLog(r).Debug("submit by %s - unauthorized", user)
		writeJSON(w, http.StatusOK, contract.SubmitUnauthorized)
		return
	}

	resp, err := s.game.Submit(r.Context(), user, submit.Program)
	if err != nil {
		s.requestLog(r).Error("submit by %s failed: %v", user, err)
		s.logger.Error("submit failed", zap.String("req", RequestID(r.Context())), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.requestLog(r).Debug("submit by %s -> %s", user, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.game.Submissions(r.Context())
	if err != nil {
		s.requestLog(r).Error("listing submissions failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	details, err := s.game.Submission(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		s.requestLog(r).Error("loading submission %d failed: %v", id, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleLevelState(w http.ResponseWriter, r *http.Request) {
	var req contract.SetLevelState
	if !s.decode(w, r, &req) || !s.authorizeAdmin(w, r, req.AdminToken) {
		return
	}
	s.game.SetLevelClosed(req.IsClosed)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req contract.Reset
	if !s.decode(w, r, &req) || !s.authorizeAdmin(w, r, req.AdminToken) {
		return
	}
	if err := s.game.Reset(r.Context()); err != nil {
		s.requestLog(r).Error("reset failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	var req contract.RateLimit
	if !s.decode(w, r, &req) || !s.authorizeAdmin(w, r, req.AdminToken) {
		return
	}
	if !s.users.Has(req.User) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	limit := ratelimit.Limit{Count: int(req.Count), Window: time.Duration(req.Window) * time.Second}
	if err := s.game.SetRateLimit(req.User, limit); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) requestLog(r *http.Request) *logging.RequestLogger {
	return logging.WithRequestID(logging.CategoryServer, RequestID(r.Context()))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.requestLog(r).Warn("bad request body on %s: %v", r.URL.Path, err)
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) authorizeAdmin(w http.ResponseWriter, r *http.Request, token string) bool {
	if token != s.adminToken {
		logging.ServerWarn("invalid admin token on %s (req %s)", r.URL.Path, RequestID(r.Context()))
		w.WriteHeader(http.StatusUnauthorized)
		return false
	}
	return true
}

// credential prefers the cookie, then the body field.
func credential(r *http.Request, cookie string, fallback *string) string {
	if c, err := r.Cookie(cookie); err == nil {
		return c.Value
	}
	if fallback != nil {
		return *fallback
	}
	return missingCredential
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
