package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// AuthMiddleware verifies the Bearer access token and stores the caller's
// user id on the request context. Handlers read it back with UserID.
func AuthMiddleware(tokens *auth.TokenIssuer, next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := tokens.VerifyAccess(token)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next(w, r.WithContext(ctx))
	}
}

// UserID returns the authenticated caller's id, or "" when the request
// did not pass through AuthMiddleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
