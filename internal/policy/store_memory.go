package policy

import (
	"context"
	"sync"

	"lanewise/pkg/domain"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	policies map[domain.PolicyID]*Policy
	byRef    map[string]domain.PolicyID
	byQuote  map[domain.QuoteID]domain.PolicyID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		policies: make(map[domain.PolicyID]*Policy),
		byRef:    make(map[string]domain.PolicyID),
		byQuote:  make(map[domain.QuoteID]domain.PolicyID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, p *Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byRef[p.Reference]; exists {
		return ErrDuplicateRef
	}
	if _, exists := s.byQuote[p.QuoteID]; exists {
		return ErrQuoteBound
	}
	cp := *p
	s.policies[p.ID] = &cp
	s.byRef[p.Reference] = p.ID
	s.byQuote[p.QuoteID] = p.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.PolicyID) (*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) GetByReference(_ context.Context, ref string) (*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byRef[ref]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.policies[id]
	return &cp, nil
}

func (s *InMemoryStore) GetByQuoteID(_ context.Context, quoteID domain.QuoteID) (*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byQuote[quoteID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.policies[id]
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, p *Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	s.policies[p.ID] = &cp
	return nil
}

func (s *InMemoryStore) TransitionStatus(_ context.Context, id domain.PolicyID, from, to domain.PolicyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.policies[id]
	if !ok {
		return ErrNotFound
	}
	if p.Status != from {
		return ErrStatusConflict
	}
	p.Status = to
	return nil
}
