package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/logging"
)

type actorKey struct{}

// TokenVerifier validates an access token and resolves the user it belongs to.
type TokenVerifier interface {
	VerifyAccess(token string) (string, error)
}

// WithActor stores the authenticated user id on the context.
func WithActor(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext returns the authenticated user id, or "" for Anonymous.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(actorKey{}).(string); ok {
		return id
	}
	return ""
}

// RequireAuth resolves the request to a user identity and rejects the
// request with 401 when no valid access token is present.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolve(verifier, r)
			if err != nil || userID == "" {
				if err != nil {
					logging.FromContext(r.Context()).Warn("access token rejected", "error", err)
				}
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), userID)))
		})
	}
}

// OptionalAuth resolves the actor when a valid token is present and proceeds
// as Anonymous otherwise, never failing the request.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := resolve(verifier, r); err == nil && userID != "" {
				r = r.WithContext(WithActor(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolve extracts the access token from the bearer header or the session
// cookie and verifies it. A missing token resolves to Anonymous without error.
func resolve(verifier TokenVerifier, r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		if cookie, err := r.Cookie("accessToken"); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return "", nil
	}
	return verifier.VerifyAccess(token)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return strings.TrimSpace(header)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    false,
		"statusCode": http.StatusUnauthorized,
		"message":    "unauthorized request",
	})
}
