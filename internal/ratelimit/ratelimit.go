// Package ratelimit applies per-agent request limits to the write endpoints.
// Sliding window counting, so a burst straddling a window boundary cannot
// double the effective limit.
package ratelimit

import (
	"context"
	"time"
)

// Result reports a limit check. ResetAt is when the oldest counted request
// leaves the window.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Store counts requests per key within a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
	Reset(ctx context.Context, key string) error
}
