package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pulse-messenger/media-service/internal/response"
	"github.com/pulse-messenger/media-service/internal/user"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// UserIDKey is the context key for the authenticated user's ID.
const UserIDKey contextKey = "userID"

// SessionIDKey is the context key for the authenticated caller's session ID.
const SessionIDKey contextKey = "sessionID"

// SessionStore looks up an active session by its bearer token. A token that
// parses as a valid JWT but has no matching session was revoked and must be
// rejected.
type SessionStore interface {
	FindSessionByToken(ctx context.Context, token string) (*user.Session, error)
}

var _ SessionStore = (*user.Repository)(nil)

// RequireAuth returns middleware that validates a Bearer JWT, confirms the
// token still belongs to an active session, and injects the user and session
// ids into the request context.
func RequireAuth(jwtSecret string, sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "You need to be logged in.")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "You need to be logged in.")
				return
			}
			rawToken := parts[1]

			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				response.Unauthorized(w, "You need to be logged in.")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				response.Unauthorized(w, "You need to be logged in.")
				return
			}
			userID, _ := claims["userID"].(string)

			sess, err := sessions.FindSessionByToken(r.Context(), rawToken)
			if err != nil || sess.UserID != userID {
				response.Unauthorized(w, "You need to be logged in.")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, SessionIDKey, sess.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
