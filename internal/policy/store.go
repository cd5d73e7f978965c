package policy

import (
	"context"
	"errors"

	"lanewise/pkg/domain"
)

var (
	ErrNotFound       = errors.New("policy not found")
	ErrDuplicateRef   = errors.New("reference already in use")
	ErrQuoteBound     = errors.New("quote already has a policy")
	ErrStatusConflict = errors.New("policy status changed concurrently")
)

// Store persists policies. Create enforces one policy per quote; the unique
// quote index is the final backstop behind the bind CAS.
type Store interface {
	Create(ctx context.Context, p *Policy) error
	Get(ctx context.Context, id domain.PolicyID) (*Policy, error)
	GetByReference(ctx context.Context, ref string) (*Policy, error)
	GetByQuoteID(ctx context.Context, quoteID domain.QuoteID) (*Policy, error)
	Update(ctx context.Context, p *Policy) error
	TransitionStatus(ctx context.Context, id domain.PolicyID, from, to domain.PolicyStatus) error
}
