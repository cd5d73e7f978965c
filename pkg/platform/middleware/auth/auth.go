// Package auth provides JWT bearer authentication middleware for routes that
// mutate quotes and policies. Health and metrics stay unauthenticated; every
// quoting, binding, and policy route requires an agent token.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "lanewise/pkg/domain-errors"
	"lanewise/pkg/platform/httputil"
	"lanewise/pkg/requestcontext"
)

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	AgentID string
	Role    string
}

// TokenValidator validates a bearer token and returns the caller's identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (Identity, error)
}

// RequireAgent rejects requests without a valid bearer token and puts the
// agent ID and role on the request context for handlers and audit events.
func RequireAgent(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing Authorization header"))
				return
			}
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Authorization header must use Bearer scheme"))
				return
			}

			identity, err := validator.ValidateToken(tokenString)
			if err != nil {
				logger.WarnContext(ctx, "rejected agent token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err.Error(),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = requestcontext.WithAgentID(ctx, identity.AgentID)
			ctx = requestcontext.WithRole(ctx, identity.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows only admin-role callers through. It must run after
// RequireAgent, which populates the role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestcontext.Role(r.Context()) != "admin" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
