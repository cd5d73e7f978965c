package testutil

import (
	"net/http"
	"time"

	"lanewise/pkg/requestcontext"
)

// WithAgent adds an agent ID to the request context, simulating what the
// auth middleware does for authenticated requests.
func WithAgent(req *http.Request, agentID string) *http.Request {
	if agentID == "" {
		return req
	}
	return req.WithContext(requestcontext.WithAgentID(req.Context(), agentID))
}

// WithRequestTime pins the request clock so expiration and eligibility
// checks are deterministic.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
