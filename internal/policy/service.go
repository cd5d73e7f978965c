package policy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lanewise/internal/events"
	"lanewise/pkg/domain"
	derrors "lanewise/pkg/domain-errors"
	"lanewise/pkg/requestcontext"
)

// Service manages the policy lifecycle after binding. Binding itself lives
// in the binding package; this service owns activation and cancellation.
type Service struct {
	store     Store
	publisher *events.Publisher
	logger    *slog.Logger
}

func NewService(store Store, publisher *events.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, publisher: publisher, logger: logger}
}

// Get returns the policy for a reference.
func (s *Service) Get(ctx context.Context, ref string) (*Policy, error) {
	p, err := s.store.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "policy not found")
		}
		return nil, derrors.New(derrors.CodeInternal, "failed to load policy")
	}
	return p, nil
}

// Activate moves a BOUND policy to IN_FORCE. Activation before the effective
// date is rejected; coverage cannot start early.
func (s *Service) Activate(ctx context.Context, ref string) (*Policy, error) {
	p, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	if now.Before(p.EffectiveAt) {
		return nil, derrors.Newf(derrors.CodeInvalidTransition,
			"policy is not effective until %s", p.EffectiveAt.Format(time.RFC3339))
	}
	if err := p.Status.CheckTransition(domain.PolicyInForce); err != nil {
		return nil, err
	}
	if err := s.store.TransitionStatus(ctx, p.ID, domain.PolicyBound, domain.PolicyInForce); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return nil, derrors.New(derrors.CodeConflict, "policy status changed concurrently")
		}
		return nil, derrors.New(derrors.CodeInternal, "failed to activate policy")
	}
	p.Status = domain.PolicyInForce

	s.logger.InfoContext(ctx, "policy activated", slog.String("reference", p.Reference))
	s.publish(events.TypePolicyActive, p, nil)
	return p, nil
}

// Cancel terminates an IN_FORCE policy. This is an administrative operation;
// the handler restricts it to admin-scoped tokens.
func (s *Service) Cancel(ctx context.Context, ref, reason string) (*Policy, error) {
	p, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := p.Status.CheckTransition(domain.PolicyCancelled); err != nil {
		return nil, err
	}
	if err := s.store.TransitionStatus(ctx, p.ID, domain.PolicyInForce, domain.PolicyCancelled); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return nil, derrors.New(derrors.CodeConflict, "policy status changed concurrently")
		}
		return nil, derrors.New(derrors.CodeInternal, "failed to cancel policy")
	}
	now := requestcontext.Now(ctx)
	p.Status = domain.PolicyCancelled
	p.CancelledAt = &now
	if err := s.store.Update(ctx, p); err != nil {
		return nil, derrors.New(derrors.CodeInternal, "failed to record cancellation time")
	}

	s.logger.InfoContext(ctx, "policy cancelled",
		slog.String("reference", p.Reference), slog.String("reason", reason))
	s.publish(events.TypePolicyCancelled, p, map[string]any{"reason": reason})
	return p, nil
}

func (s *Service) publish(eventType events.Type, p *Policy, detail map[string]any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.Event{
		Type:       eventType,
		Reference:  p.Reference,
		AgentID:    p.AgentID,
		OccurredAt: time.Now(),
		Detail:     detail,
	})
}
