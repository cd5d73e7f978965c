package binding

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lanewise/internal/binding/metrics"
	"lanewise/internal/events"
	"lanewise/internal/policy"
	"lanewise/internal/quote"
	"lanewise/pkg/domain"
	derrors "lanewise/pkg/domain-errors"
	"lanewise/pkg/refnum"
	"lanewise/pkg/requestcontext"
)

const refAttempts = 5

// maxEffectiveLead caps how far in the future coverage may start.
const maxEffectiveLead = 60 * 24 * time.Hour

// QuoteSource loads quotes with expiration already applied. Satisfied by
// quote.Service.
type QuoteSource interface {
	Get(ctx context.Context, ref string) (*quote.Quote, error)
}

// QuoteTransitions is the status CAS on the quote store.
type QuoteTransitions interface {
	TransitionStatus(ctx context.Context, id domain.QuoteID, from, to domain.QuoteStatus) error
}

// BindRequest carries the payment instrument and the requested coverage
// start date.
type BindRequest struct {
	Payment       PaymentDetails `json:"payment"`
	EffectiveDate time.Time      `json:"effective_date"`
}

// Service orchestrates binding: it validates payment, wins the quote status
// race, authorizes the charge, and creates the policy with the quoted
// breakdown copied verbatim.
type Service struct {
	quotes      QuoteSource
	transitions QuoteTransitions
	policies    policy.Store
	gateway     Gateway
	publisher   *events.Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewService(
	quotes QuoteSource,
	transitions QuoteTransitions,
	policies policy.Store,
	gateway Gateway,
	publisher *events.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		quotes:      quotes,
		transitions: transitions,
		policies:    policies,
		gateway:     gateway,
		publisher:   publisher,
		logger:      logger,
		metrics:     m,
	}
}

// Bind converts a quote into a policy. The quote status CAS admits exactly
// one binder; everything before it is side-effect free, and a failure after
// it reverts the quote to QUOTED so the agent can retry.
func (s *Service) Bind(ctx context.Context, ref string, req BindRequest) (*policy.Policy, error) {
	start := time.Now()
	p, err := s.bind(ctx, ref, req)
	s.metrics.ObserveBindDuration(time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordAttempt(outcomeFor(err))
		return nil, err
	}
	s.metrics.RecordAttempt("bound")
	return p, nil
}

func (s *Service) bind(ctx context.Context, ref string, req BindRequest) (*policy.Policy, error) {
	q, err := s.quotes.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.checkBindable(q); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	effective, err := resolveEffectiveDate(req.EffectiveDate, now)
	if err != nil {
		return nil, err
	}
	if err := ValidatePayment(req.Payment, now); err != nil {
		return nil, err
	}

	// Win the race before touching the processor. Exactly one binder gets
	// past this line per quote.
	if err := s.transitions.TransitionStatus(ctx, q.ID, domain.StatusQuoted, domain.StatusBinding); err != nil {
		return nil, s.transitionError(ctx, ref, err)
	}
	s.publish(events.TypeBindStarted, ref, q.AgentID, nil)

	auth, err := s.gateway.Authorize(ctx, q.Breakdown.Total, req.Payment)
	if err != nil {
		s.revert(ctx, q.ID, ref)
		if errors.Is(err, ErrDeclined) {
			s.publish(events.TypeBindFailed, ref, q.AgentID, map[string]any{"reason": "declined"})
			return nil, derrors.New(derrors.CodePaymentDeclined, "payment was declined")
		}
		s.logger.ErrorContext(ctx, "payment authorization failed",
			slog.String("reference", ref), slog.String("error", err.Error()))
		s.publish(events.TypeBindFailed, ref, q.AgentID, map[string]any{"reason": "gateway_error"})
		return nil, derrors.New(derrors.CodeDependencyUnavailable, "payment processor unavailable")
	}

	pol := &policy.Policy{
		ID:          domain.NewPolicyID(),
		QuoteID:     q.ID,
		QuoteRef:    q.Reference,
		Status:      domain.PolicyBound,
		AgentID:     q.AgentID,
		Breakdown:   *q.Breakdown,
		Payment:     paymentRecord(req.Payment, auth.Token),
		EffectiveAt: effective,
		ExpiresAt:   effective.Add(policy.Term),
		BoundAt:     now,
	}
	if err := s.createWithReference(ctx, pol); err != nil {
		s.revert(ctx, q.ID, ref)
		s.publish(events.TypeBindFailed, ref, q.AgentID, map[string]any{"reason": "persistence"})
		return nil, err
	}

	if err := s.transitions.TransitionStatus(ctx, q.ID, domain.StatusBinding, domain.StatusBound); err != nil {
		// The policy exists; the quote row is the one out of step. Surface it
		// loudly but do not fail the bind.
		s.logger.ErrorContext(ctx, "quote finalization failed after policy creation",
			slog.String("quote", ref),
			slog.String("policy", pol.Reference),
			slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "policy bound",
		slog.String("quote", ref),
		slog.String("policy", pol.Reference),
		slog.String("total", pol.Breakdown.Total.StringFixed(2)),
		slog.String("payment_last4", pol.Payment.Last4))
	s.publish(events.TypePolicyBound, pol.Reference, pol.AgentID, map[string]any{
		"quote":     ref,
		"total":     pol.Breakdown.Total.StringFixed(2),
		"effective": effective.Format(time.RFC3339),
	})
	return pol, nil
}

func (s *Service) checkBindable(q *quote.Quote) error {
	switch q.Status {
	case domain.StatusQuoted:
		if q.Breakdown == nil {
			return derrors.New(derrors.CodeInternal, "quote has no premium breakdown")
		}
		return nil
	case domain.StatusExpired:
		return derrors.New(derrors.CodeQuoteExpired, "quote has expired and can no longer be bound")
	case domain.StatusBinding:
		return derrors.New(derrors.CodeBindInProgress, "another bind for this quote is in progress")
	case domain.StatusBound:
		return derrors.New(derrors.CodeAlreadyBound, "quote is already bound")
	default:
		return derrors.Newf(derrors.CodeInvalidTransition, "quote in status %s cannot be bound", q.Status)
	}
}

// transitionError maps a lost CAS to the caller-facing reason by looking at
// the fresh status.
func (s *Service) transitionError(ctx context.Context, ref string, err error) error {
	if !errors.Is(err, quote.ErrStatusConflict) {
		return derrors.New(derrors.CodeInternal, "failed to reserve quote for binding")
	}
	fresh, ferr := s.quotes.Get(ctx, ref)
	if ferr != nil {
		return derrors.New(derrors.CodeBindInProgress, "another bind for this quote is in progress")
	}
	return s.checkBindable(fresh)
}

func (s *Service) revert(ctx context.Context, id domain.QuoteID, ref string) {
	if err := s.transitions.TransitionStatus(ctx, id, domain.StatusBinding, domain.StatusQuoted); err != nil {
		s.logger.ErrorContext(ctx, "failed to revert quote after bind failure",
			slog.String("reference", ref), slog.String("error", err.Error()))
	}
}

func (s *Service) createWithReference(ctx context.Context, pol *policy.Policy) error {
	for attempt := 0; attempt < refAttempts; attempt++ {
		ref, err := refnum.Generate(refnum.PolicyPrefix)
		if err != nil {
			return derrors.New(derrors.CodeInternal, "failed to generate policy reference")
		}
		pol.Reference = ref
		err = s.policies.Create(ctx, pol)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, policy.ErrQuoteBound):
			return derrors.New(derrors.CodeAlreadyBound, "quote is already bound")
		case errors.Is(err, policy.ErrDuplicateRef):
			s.logger.WarnContext(ctx, "policy reference collision, retrying",
				slog.String("reference", ref), slog.Int("attempt", attempt+1))
		default:
			return derrors.New(derrors.CodeInternal, "failed to persist policy")
		}
	}
	return derrors.New(derrors.CodeInternal, "exhausted policy reference generation attempts")
}

// resolveEffectiveDate defaults a zero date to today and rejects coverage
// that would start in the past or more than 60 days out. Comparison is at
// day granularity in UTC.
func resolveEffectiveDate(requested, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if requested.IsZero() {
		return today, nil
	}
	effective := time.Date(requested.Year(), requested.Month(), requested.Day(), 0, 0, 0, 0, time.UTC)
	if effective.Before(today) {
		return time.Time{}, derrors.New(derrors.CodeInvalidInput, "effective date cannot be in the past").
			WithFields("effective_date")
	}
	if effective.After(today.Add(maxEffectiveLead)) {
		return time.Time{}, derrors.New(derrors.CodeInvalidInput, "effective date cannot be more than 60 days out").
			WithFields("effective_date")
	}
	return effective, nil
}

func paymentRecord(details PaymentDetails, token string) policy.PaymentRecord {
	record := policy.PaymentRecord{Method: details.Method, Token: token}
	switch details.Method {
	case domain.PaymentCard:
		record.Last4 = last4(details.Card.Number)
		record.Brand = brandFor(details.Card.Number)
	case domain.PaymentACH:
		record.Last4 = last4(details.ACH.AccountNumber)
	}
	return record
}

func outcomeFor(err error) string {
	switch derrors.CodeOf(err) {
	case derrors.CodePaymentDeclined:
		return "declined"
	case derrors.CodeInvalidPayment, derrors.CodeInvalidInput:
		return "invalid_payment"
	case derrors.CodeQuoteExpired:
		return "expired"
	case derrors.CodeBindInProgress, derrors.CodeAlreadyBound:
		return "conflict"
	case derrors.CodeDependencyUnavailable:
		return "gateway_unavailable"
	default:
		return "error"
	}
}

func (s *Service) publish(eventType events.Type, ref, agentID string, detail map[string]any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.Event{
		Type:       eventType,
		Reference:  ref,
		AgentID:    agentID,
		OccurredAt: time.Now(),
		Detail:     detail,
	})
}
