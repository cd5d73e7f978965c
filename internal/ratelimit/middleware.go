package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	derrors "lanewise/pkg/domain-errors"
	"lanewise/pkg/platform/httputil"
	"lanewise/pkg/requestcontext"
)

// Middleware enforces per-agent limits. Checks that error fail open: a
// broken limiter store must not take quoting down with it.
type Middleware struct {
	store  Store
	logger *slog.Logger
}

func NewMiddleware(store Store, logger *slog.Logger) *Middleware {
	return &Middleware{store: store, logger: logger}
}

// PerAgent limits requests per authenticated agent within the window. Mount
// after the auth middleware; requests with no agent identity pass through.
func (m *Middleware) PerAgent(limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agentID := requestcontext.AgentID(r.Context())
			if agentID == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := m.store.Allow(r.Context(), "agent:"+agentID, limit, window)
			if err != nil {
				m.logger.ErrorContext(r.Context(), "rate limit check failed",
					slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			addHeaders(w, result)
			if !result.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(result)))
				httputil.WriteError(w, derrors.New(derrors.CodeRateLimited, "request limit reached, slow down"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func retryAfterSeconds(result *Result) int {
	secs := int(time.Until(result.ResetAt).Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return secs
}
