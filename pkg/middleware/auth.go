package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKeyType string

const (
	principalIDKey   contextKeyType = "principal_id"
	principalKindKey contextKeyType = "principal_kind"
)

// Claims represents the token claims extracted by the auth middleware.
type Claims struct {
	PrincipalID string `json:"sub"`
	Kind        string `json:"typ"`
}

// TokenValidator validates an access token and returns its claims. The
// concrete validation logic is injected by the application; it receives the
// request context so validators may consult a store.
type TokenValidator func(ctx context.Context, token string) (*Claims, error)

// Auth validates access tokens and injects principal claims into the request
// context. The token is read from the named cookie first, then from the
// Authorization header as a bearer token. All failures produce the same
// generic 401 response so callers cannot distinguish missing, malformed, and
// expired credentials.
func Auth(cookieName string, validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r, cookieName)
			if token == "" {
				writeAuthError(w)
				return
			}

			claims, err := validate(r.Context(), token)
			if err != nil {
				writeAuthError(w)
				return
			}

			ctx := context.WithValue(r.Context(), principalIDKey, claims.PrincipalID)
			ctx = context.WithValue(ctx, principalKindKey, claims.Kind)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireKind checks that the authenticated principal has one of the given
// kinds. It must be mounted after Auth.
func RequireKind(kinds ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		allowed[k] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			kind := PrincipalKindFromContext(r.Context())
			if _, ok := allowed[kind]; !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":    "FORBIDDEN",
					"message": "insufficient permissions",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalIDFromContext extracts the principal ID from the request context.
func PrincipalIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(principalIDKey).(string); ok {
		return id
	}
	return ""
}

// PrincipalKindFromContext extracts the principal kind from the request context.
func PrincipalKindFromContext(ctx context.Context) string {
	if kind, ok := ctx.Value(principalKindKey).(string); ok {
		return kind
	}
	return ""
}

func extractToken(r *http.Request, cookieName string) string {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": "authentication required",
	})
}
