package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is unexported so only this package can read or write the caller
// identity in a request context.
type contextKey string

const userIDKey contextKey = "userID"

// TokenCookie is the HttpOnly cookie holding the access token for browser
// clients. API clients send the same token as a bearer header instead.
const TokenCookie = "token"

// RequireAuth enforces authentication on protected routes: it resolves the
// bearer credential, stores the user id in the request context, and rejects
// with 401 when the credential is missing or invalid.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"unauthenticated","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the caller identity when a valid credential is
// present but never blocks the request. Used on public reads where
// authenticated viewers get caller-relative capability flags and owners can
// see their own unshared projects.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's id from the request
// context. Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the credential from the Authorization header or the
// token cookie (header wins) and validates it.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return "", errors.New("auth: malformed Authorization header")
		}
		return tokens.Validate(raw)
	}

	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
