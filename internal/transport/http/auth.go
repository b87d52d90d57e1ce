package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pixglobal/registry/internal/clock"
)

// TokenResolver maps a bearer token to a user id.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string, now time.Time) (string, error)
}

type userIDKey struct{}

// UserID returns the authenticated user id set by RequireAuth, if any.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// RequireAuth resolves the Authorization bearer token and injects the user
// id into the request context. Requests without a valid token get 401.
func RequireAuth(sessions TokenResolver, clk clock.Clock, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "authentication required")
			return
		}

		userID, err := sessions.ResolveToken(r.Context(), token, clk.Now())
		if err != nil {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
