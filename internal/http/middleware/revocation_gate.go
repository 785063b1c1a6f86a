package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/snic-labs/policy-api/internal/http/response"
	"github.com/snic-labs/policy-api/internal/observability"
	"github.com/snic-labs/policy-api/internal/security"
)

const RevokedTokenBody = "Token has been invalidated"

type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RevocationGate rejects requests that present a revoked bearer token. It
// fails open: when the check itself errors the request proceeds.
func RevocationGate(checker RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := security.BearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			revoked, err := checker.IsRevoked(r.Context(), raw)
			if err != nil {
				observability.RecordBlacklistCheck(r.Context(), "error")
				logger.WarnContext(r.Context(), "revocation check failed, allowing request",
					"error", err,
					"path", r.URL.Path,
				)
				next.ServeHTTP(w, r)
				return
			}
			if revoked {
				observability.RecordBlacklistCheck(r.Context(), "revoked")
				logger.InfoContext(r.Context(), "rejected revoked token", "path", r.URL.Path)
				response.Text(w, http.StatusUnauthorized, RevokedTokenBody)
				return
			}
			observability.RecordBlacklistCheck(r.Context(), "clear")
			next.ServeHTTP(w, r)
		})
	}
}
