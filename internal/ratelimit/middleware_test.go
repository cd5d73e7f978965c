package ratelimit

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanewise/pkg/requestcontext"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func agentRequest(agentID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/quotes", nil)
	return req.WithContext(requestcontext.WithAgentID(req.Context(), agentID))
}

func TestPerAgentEnforcesLimit(t *testing.T) {
	mw := NewMiddleware(NewInMemoryStore(), slog.Default())
	handler := mw.PerAgent(3, time.Minute)(okHandler())

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, agentRequest("agent-1"))
		require.Equal(t, http.StatusOK, rr.Code, "request %d", i+1)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, agentRequest("agent-1"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	// Another agent is unaffected.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, agentRequest("agent-2"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPerAgentSetsHeaders(t *testing.T) {
	mw := NewMiddleware(NewInMemoryStore(), slog.Default())
	handler := mw.PerAgent(5, time.Minute)(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, agentRequest("agent-1"))
	assert.Equal(t, "5", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rr.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Reset"))
}

func TestPerAgentSkipsAnonymous(t *testing.T) {
	mw := NewMiddleware(NewInMemoryStore(), slog.Default())
	handler := mw.PerAgent(1, time.Minute)(okHandler())

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/quotes", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}
