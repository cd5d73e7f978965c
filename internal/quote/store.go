package quote

import (
	"context"
	"errors"

	"lanewise/pkg/domain"
)

var (
	ErrNotFound          = errors.New("quote not found")
	ErrDuplicateRef      = errors.New("reference already in use")
	ErrStatusConflict    = errors.New("quote status changed concurrently")
	ErrReferenceImmutable = errors.New("reference cannot be changed")
)

// Store persists quotes. TransitionStatus is the concurrency primitive for
// the bind flow: it atomically moves a quote from an expected status to a new
// one and fails with ErrStatusConflict when another writer got there first.
type Store interface {
	Create(ctx context.Context, q *Quote) error
	Get(ctx context.Context, id domain.QuoteID) (*Quote, error)
	GetByReference(ctx context.Context, ref string) (*Quote, error)
	Update(ctx context.Context, q *Quote) error
	TransitionStatus(ctx context.Context, id domain.QuoteID, from, to domain.QuoteStatus) error
	ListByAgent(ctx context.Context, agentID string) ([]*Quote, error)
}
