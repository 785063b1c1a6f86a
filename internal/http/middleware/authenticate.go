package middleware

import (
	"context"
	"net/http"

	"github.com/snic-labs/policy-api/internal/http/response"
	"github.com/snic-labs/policy-api/internal/observability"
	"github.com/snic-labs/policy-api/internal/security"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
	TokenContextKey  contextKey = "token"
)

type TokenVerifier interface {
	Parse(raw string) (*security.Claims, error)
}

// Authenticate verifies a bearer token when one is present and stores its
// claims and raw value in the request context. It never rejects a request;
// RequireAuth does that for routes that need an identity.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := security.BearerToken(r)
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing")
				next.ServeHTTP(w, r)
				return
			}
			claims, err := verifier.Parse(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid")
				next.ServeHTTP(w, r)
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid")
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			ctx = context.WithValue(ctx, TokenContextKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid access token", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok && c != nil
}

func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(TokenContextKey).(string)
	return t, ok && t != ""
}
