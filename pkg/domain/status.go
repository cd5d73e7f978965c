package domain

import dErrors "lanewise/pkg/domain-errors"

// QuoteStatus is the lifecycle state of a quote.
// Invariant: transitions only move along quoteTransitions; there is no path
// back to StatusQuoted from StatusBound and no path out of StatusExpired.
type QuoteStatus string

const (
	StatusQuoted  QuoteStatus = "QUOTED"
	StatusBinding QuoteStatus = "BINDING"
	StatusBound   QuoteStatus = "BOUND"
	StatusExpired QuoteStatus = "EXPIRED"
)

// quoteTransitions is the legal-transition table, current state to allowed
// next states. BINDING is transitional: it either advances to BOUND on
// payment success or reverts to QUOTED on payment failure.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	StatusQuoted:  {StatusBinding, StatusExpired},
	StatusBinding: {StatusBound, StatusQuoted},
	StatusBound:   {},
	StatusExpired: {},
}

// PolicyStatus is the lifecycle state of a bound policy.
type PolicyStatus string

const (
	PolicyBound     PolicyStatus = "BOUND"
	PolicyInForce   PolicyStatus = "IN_FORCE"
	PolicyCancelled PolicyStatus = "CANCELLED"
	PolicyExpired   PolicyStatus = "EXPIRED"
)

var policyTransitions = map[PolicyStatus][]PolicyStatus{
	PolicyBound:     {PolicyInForce},
	PolicyInForce:   {PolicyCancelled, PolicyExpired},
	PolicyCancelled: {},
	PolicyExpired:   {},
}

// CanTransition reports whether a quote may move from one status to another.
func (s QuoteStatus) CanTransition(to QuoteStatus) bool {
	for _, next := range quoteTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns an InvalidStateTransition error naming both the
// attempted and current state when the move is not legal.
func (s QuoteStatus) CheckTransition(to QuoteStatus) error {
	if !s.CanTransition(to) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot transition quote from %s to %s", s, to).
			WithFields(string(s), string(to))
	}
	return nil
}

// IsTerminal reports whether no further quote transitions are possible.
func (s QuoteStatus) IsTerminal() bool {
	return len(quoteTransitions[s]) == 0
}

// CanTransition reports whether a policy may move from one status to another.
func (s PolicyStatus) CanTransition(to PolicyStatus) bool {
	for _, next := range policyTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns an InvalidStateTransition error for illegal policy moves.
func (s PolicyStatus) CheckTransition(to PolicyStatus) error {
	if !s.CanTransition(to) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot transition policy from %s to %s", s, to).
			WithFields(string(s), string(to))
	}
	return nil
}

// ParseQuoteStatus validates a stored status value at trust boundaries.
func ParseQuoteStatus(s string) (QuoteStatus, error) {
	status := QuoteStatus(s)
	if _, ok := quoteTransitions[status]; !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown quote status %q", s)
	}
	return status, nil
}

// ParsePolicyStatus validates a stored policy status value.
func ParsePolicyStatus(s string) (PolicyStatus, error) {
	status := PolicyStatus(s)
	if _, ok := policyTransitions[status]; !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown policy status %q", s)
	}
	return status, nil
}
