// internal/auth/middleware.go
// JWT verification for the HTTP boundary. Token issuance and account
// management live in the accounts service; this core only verifies.

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/kolade-dev/heartlink-backend/internal/common/utils"
)

// Middleware provides authentication middleware
type Middleware struct {
	secret string
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(secret string) *Middleware {
	return &Middleware{secret: secret}
}

// Authenticate verifies the bearer JWT and adds the user ID to the
// request context for downstream handlers.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := utils.ValidateJWT(token, m.secret)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if claims.Type != "access" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token type")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		ctx = context.WithValue(ctx, "username", claims.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the token out of the Authorization header
func (m *Middleware) extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}

// UserIDFromContext returns the authenticated user ID set by Authenticate
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value("userID").(int64)
	return userID, ok
}
