// Package httpapi exposes the server's HTTP/JSON endpoints: account
// registration and login, account introspection, and vector sync.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mkuznecovs/healthmon/internal/logging"
	"github.com/mkuznecovs/healthmon/internal/server/models"
	"github.com/mkuznecovs/healthmon/internal/server/services"
	"github.com/mkuznecovs/healthmon/internal/shared"
)

const (
	// maxRequestBody caps request bodies. A full sync batch of 100
	// records encodes to well under 64 KiB.
	maxRequestBody = 1 << 20

	defaultPullLimit = 100
	maxPullLimit     = 1000
)

type Dependencies struct {
	Logger        logging.Logger
	Addr          string
	UserService   *services.UserService
	VectorService *services.VectorService
}

type Server struct {
	httpServer    *http.Server
	logger        logging.Logger
	mux           *http.ServeMux
	userService   *services.UserService
	vectorService *services.VectorService
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:        d.Logger,
		mux:           mux,
		userService:   d.UserService,
		vectorService: d.VectorService,
	}

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(d.UserService, h)
	}
	mux.Handle("GET /users/me", authed(s.handleMe))
	mux.Handle("POST /sync/{user_id}/vectors", authed(s.handlePushVectors))
	mux.Handle("GET /sync/{user_id}/vectors", authed(s.handlePullVectors))

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- wire types ---

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	UserType        string     `json:"user_type"`
	SubscriptionEnd *time.Time `json:"subscription_end,omitempty"`
}

// pushRecord lifts the dedup key fields out of a submitted record. The
// raw body is stored untouched.
type pushRecord struct {
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
}

type syncResponse struct {
	Status   string `json:"status"`
	Count    int    `json:"count"`
	Accepted []int  `json:"accepted"`
}

// --- handlers ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "username and password are required")
		return
	}

	token, err := s.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrorLoginAlreadyExists) {
			writeError(w, http.StatusConflict, "login_taken", "username or email already registered")
			return
		}
		s.internalError(w, r, "register", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	token, err := s.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrorInvalidLoginPassword) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid username or password")
			return
		}
		s.internalError(w, r, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		UserType:        user.UserType,
		SubscriptionEnd: user.SubscriptionEnd,
	})
}

func (s *Server) handlePushVectors(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorizeSyncUser(w, r)
	if !ok {
		return
	}

	var raw []json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	batch := make([]services.VectorRecord, 0, len(raw))
	for _, body := range raw {
		var rec pushRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			// leaves the dedup key zeroed; the service skips it
			batch = append(batch, services.VectorRecord{Payload: body})
			continue
		}
		batch = append(batch, services.VectorRecord{
			DeviceID:   rec.DeviceID,
			CapturedAt: rec.Timestamp,
			Payload:    body,
		})
	}

	result, err := s.vectorService.Store(r.Context(), user.ID, batch)
	if err != nil {
		s.internalError(w, r, "push vectors", err)
		return
	}

	status := "synced"
	if result.Count < len(batch) {
		status = "partial"
	}
	writeJSON(w, http.StatusOK, syncResponse{
		Status:   status,
		Count:    result.Count,
		Accepted: result.Accepted,
	})
}

func (s *Server) handlePullVectors(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorizeSyncUser(w, r)
	if !ok {
		return
	}

	limit := defaultPullLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		limit = min(n, maxPullLimit)
	}

	vectors, err := s.vectorService.SelectRecent(r.Context(), user.ID, limit)
	if err != nil {
		s.internalError(w, r, "pull vectors", err)
		return
	}

	out := make([]json.RawMessage, 0, len(vectors))
	for _, v := range vectors {
		out = append(out, json.RawMessage(v.Payload))
	}
	writeJSON(w, http.StatusOK, out)
}

// --- helpers ---

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	return dec.Decode(v)
}

// currentUser loads the account identified by the bearer token. A false
// return means the response has already been written.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no user id")
		return nil, false
	}

	user, err := s.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "account no longer exists")
			return nil, false
		}
		s.internalError(w, r, "load user", err)
		return nil, false
	}
	return user, true
}

// authorizeSyncUser checks that the path user matches the token user and
// that the account holds an active premium subscription.
func (s *Server) authorizeSyncUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return nil, false
	}

	pathID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid user id")
		return nil, false
	}
	if pathID != user.ID {
		writeError(w, http.StatusForbidden, "forbidden", "cannot sync another account's data")
		return nil, false
	}

	if !services.IsPremium(user) {
		writeError(w, http.StatusForbidden, "premium_required", "premium subscription required")
		return nil, false
	}
	return user, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.Error(r.Context(), op+" error", "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
}
