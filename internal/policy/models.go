package policy

import (
	"time"

	"lanewise/internal/rating"
	"lanewise/pkg/domain"
)

// Term is the policy coverage period that starts at the effective date.
const Term = 6 * 30 * 24 * time.Hour

// PaymentRecord is the tokenized payment instrument kept on the policy.
// Only non-sensitive display data survives binding; full card and account
// numbers are never stored.
type PaymentRecord struct {
	Method domain.PaymentMethod `json:"method"`
	Last4  string               `json:"last4"`
	Brand  string               `json:"brand,omitempty"`
	Token  string               `json:"token"`
}

// Policy is a bound contract. Its premium breakdown is copied verbatim from
// the quote at bind time and never recomputed.
type Policy struct {
	ID        domain.PolicyID     `json:"id"`
	Reference string              `json:"reference"`
	QuoteID   domain.QuoteID      `json:"quote_id"`
	QuoteRef  string              `json:"quote_reference"`
	Status    domain.PolicyStatus `json:"status"`
	AgentID   string              `json:"agent_id,omitempty"`

	Breakdown rating.PremiumBreakdown `json:"breakdown"`
	Payment   PaymentRecord           `json:"payment"`

	EffectiveAt time.Time  `json:"effective_at"`
	ExpiresAt   time.Time  `json:"expires_at"` // effective_at + term
	BoundAt     time.Time  `json:"bound_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// InTerm reports whether now falls inside the coverage period.
func (p *Policy) InTerm(now time.Time) bool {
	return !now.Before(p.EffectiveAt) && now.Before(p.ExpiresAt)
}
