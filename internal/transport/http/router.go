// Package httptransport assembles the public HTTP API. Handlers live with
// their features; this package only owns routing, middleware order, and the
// operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lanewise/internal/binding"
	"lanewise/internal/policy"
	"lanewise/internal/quote"
	"lanewise/pkg/platform/httputil"
	"lanewise/pkg/platform/middleware/auth"
	"lanewise/pkg/platform/middleware/requesttime"
	"lanewise/pkg/requestcontext"
)

// Deps carries everything the router mounts.
type Deps struct {
	Quotes    *quote.Handler
	Binding   *binding.Handler
	Policies  *policy.Handler
	Validator auth.TokenValidator
	RateLimit func(http.Handler) http.Handler
	Logger    *slog.Logger
	Health    func(r *http.Request) error
}

// NewRouter builds the chi router. Everything under /v1 requires an agent
// token; health and metrics are open.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requesttime.Middleware)
	r.Use(propagateRequestID)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(req); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"error":  err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(auth.RequireAgent(deps.Validator, deps.Logger))
		if deps.RateLimit != nil {
			v1.Use(deps.RateLimit)
		}
		deps.Quotes.Register(v1)
		deps.Binding.Register(v1)
		deps.Policies.Register(v1, auth.RequireAdmin)
	})

	return r
}

// propagateRequestID copies chi's request ID into the request context our
// services read, so log lines correlate across layers.
func propagateRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := chimw.GetReqID(r.Context()); reqID != "" {
			r = r.WithContext(requestcontext.WithRequestID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}
