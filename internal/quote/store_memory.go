package quote

import (
	"context"
	"sync"

	"lanewise/pkg/domain"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	quotes map[domain.QuoteID]*Quote
	byRef  map[string]domain.QuoteID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		quotes: make(map[domain.QuoteID]*Quote),
		byRef:  make(map[string]domain.QuoteID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, q *Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byRef[q.Reference]; exists {
		return ErrDuplicateRef
	}
	cp := *q
	s.quotes[q.ID] = &cp
	s.byRef[q.Reference] = q.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.QuoteID) (*Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (s *InMemoryStore) GetByReference(_ context.Context, ref string) (*Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byRef[ref]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.quotes[id]
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, q *Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.quotes[q.ID]
	if !ok {
		return ErrNotFound
	}
	if existing.Reference != q.Reference {
		return ErrReferenceImmutable
	}
	cp := *q
	s.quotes[q.ID] = &cp
	return nil
}

// TransitionStatus is the compare-and-swap on quote status. The check and
// the write happen under one lock, so concurrent bind attempts see exactly
// one winner.
func (s *InMemoryStore) TransitionStatus(_ context.Context, id domain.QuoteID, from, to domain.QuoteStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[id]
	if !ok {
		return ErrNotFound
	}
	if q.Status != from {
		return ErrStatusConflict
	}
	q.Status = to
	return nil
}

func (s *InMemoryStore) ListByAgent(_ context.Context, agentID string) ([]*Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Quote, 0)
	for _, q := range s.quotes {
		if q.AgentID == agentID {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}
