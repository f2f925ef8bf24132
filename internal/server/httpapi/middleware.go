package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mkuznecovs/healthmon/internal/logging"
)

type contextKey string

const userIDKey contextKey = "userID"

// userIDFromContext returns the account id placed there by authMiddleware.
func userIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func loggingMiddleware(logger logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path,
			"from", r.RemoteAddr, "dur", time.Since(start).String())
	})
}

// tokenVerifier resolves a bearer token to an account id.
type tokenVerifier interface {
	VerifyToken(token string) (int64, error)
}

// authMiddleware requires a valid bearer token and stores the account id
// in the request context.
func authMiddleware(verifier tokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing authorization header")
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid authorization header format")
			return
		}

		userID, err := verifier.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
