package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/lightbox/internal/domain"
)

// contextKey is a private type for context values set by this package.
type contextKey struct{}

// userIDKey carries the authenticated user's ID.
var userIDKey = contextKey{}

// withUserID stores the authenticated user ID in the context.
func withUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID set by RequireAuth.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// Middleware authenticates requests using bearer tokens.
type Middleware struct {
	tokens *TokenService
	logger zerolog.Logger
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(tokens *TokenService, logger zerolog.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		logger: logger.With().Str("middleware", "auth").Logger(),
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated user ID in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			m.unauthorized(w, domain.ErrMissingToken.Error())
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			m.unauthorized(w, domain.ErrInvalidToken.Error())
			return
		}

		userID, err := m.tokens.Verify(token)
		if err != nil {
			m.logger.Debug().Err(err).Msg("token verification failed")
			m.unauthorized(w, domain.ErrInvalidToken.Error())
			return
		}

		ctx := withUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
