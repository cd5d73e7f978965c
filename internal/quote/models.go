package quote

import (
	"time"

	"lanewise/internal/rating"
	"lanewise/pkg/domain"
)

// Validity is how long a quote stays bindable after creation.
const Validity = 30 * 24 * time.Hour

// Urgency buckets how close a quote is to expiring, for UI prioritization.
type Urgency string

const (
	UrgencyNormal  Urgency = "normal"
	UrgencyWarning Urgency = "warning"
	UrgencyUrgent  Urgency = "urgent"
	UrgencyExpired Urgency = "expired"
)

// Quote is a priced, time-limited offer. It is owned by this package until
// bound: only re-rating and lifecycle transitions mutate it, and it is never
// deleted, only expired or converted to a policy.
type Quote struct {
	ID        domain.QuoteID     `json:"id"`
	Reference string             `json:"reference"` // immutable once assigned
	Status    domain.QuoteStatus `json:"status"`
	AgentID   string             `json:"agent_id,omitempty"`

	Driver    rating.DriverInput         `json:"driver"`
	Vehicles  []rating.VehicleInput      `json:"vehicles"`
	Location  rating.LocationInput       `json:"location"`
	Coverages []rating.CoverageSelection `json:"coverages"`

	Breakdown *rating.PremiumBreakdown `json:"breakdown"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"` // created_at + 30 days
}

// IsExpired reports whether the quote has passed its expiration instant.
// Expiration is computed, never stored as a flag: a quote created exactly 30
// days ago is expired, one created 29 days 23 hours ago is not.
func (q *Quote) IsExpired(now time.Time) bool {
	return !now.Before(q.ExpiresAt)
}

// DaysRemaining returns whole days until expiration, never negative.
func (q *Quote) DaysRemaining(now time.Time) int {
	if q.IsExpired(now) {
		return 0
	}
	return int(q.ExpiresAt.Sub(now) / (24 * time.Hour))
}

// UrgencyTier derives the urgency bucket from the expiration clock at the
// 7/3/0-day thresholds. Recomputed on every read, never cached.
func (q *Quote) UrgencyTier(now time.Time) Urgency {
	if q.IsExpired(now) {
		return UrgencyExpired
	}
	switch days := q.DaysRemaining(now); {
	case days < 3:
		return UrgencyUrgent
	case days < 7:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

// RateRequest reassembles the rating input from the stored snapshots, used
// for re-rating after a coverage change.
func (q *Quote) RateRequest() rating.RateRequest {
	return rating.RateRequest{
		Driver:    q.Driver,
		Vehicles:  q.Vehicles,
		Location:  q.Location,
		Coverages: q.Coverages,
	}
}
