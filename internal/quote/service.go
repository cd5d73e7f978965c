package quote

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"lanewise/internal/events"
	"lanewise/internal/lookup"
	"lanewise/internal/rating"
	"lanewise/pkg/domain"
	derrors "lanewise/pkg/domain-errors"
	"lanewise/pkg/refnum"
	"lanewise/pkg/requestcontext"
)

// refAttempts bounds the retry loop when a generated reference collides with
// an existing one. Collisions are vanishingly rare with a 31^9 space, so more
// than a couple of retries means something else is wrong.
const refAttempts = 5

// Rater prices a rate request. Satisfied by rating.Calculator.
type Rater interface {
	Calculate(ctx context.Context, req rating.RateRequest) (*rating.PremiumBreakdown, error)
}

// Enricher fills missing vehicle fields from external data before rating.
// Satisfied by lookup.Service. A nil Enricher skips enrichment.
type Enricher interface {
	Prefetch(ctx context.Context, vehicles []rating.VehicleInput) lookup.Enrichment
}

// Service owns the quote lifecycle up to the point of binding.
type Service struct {
	store     Store
	rater     Rater
	enricher  Enricher
	publisher *events.Publisher
	logger    *slog.Logger
}

func NewService(store Store, rater Rater, publisher *events.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, rater: rater, publisher: publisher, logger: logger}
}

// WithEnricher attaches a vehicle data enricher. Quotes created without one
// rate on the caller-supplied inputs alone.
func (s *Service) WithEnricher(e Enricher) *Service {
	s.enricher = e
	return s
}

// Create rates the request and persists the result as a new quote. The
// premium breakdown is computed once here; binding later copies it verbatim
// rather than re-rating.
func (s *Service) Create(ctx context.Context, req rating.RateRequest) (*Quote, error) {
	if s.enricher != nil {
		enr := s.enricher.Prefetch(ctx, req.Vehicles)
		req.Vehicles = enr.Vehicles
		if len(enr.Degraded) > 0 {
			s.logger.WarnContext(ctx, "rating with degraded vehicle data",
				slog.Any("sources", enr.Degraded))
		}
	}

	breakdown, err := s.rater.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	q := &Quote{
		ID:        domain.NewQuoteID(),
		Status:    domain.StatusQuoted,
		AgentID:   requestcontext.AgentID(ctx),
		Driver:    req.Driver,
		Vehicles:  req.Vehicles,
		Location:  req.Location,
		Coverages: req.Coverages,
		Breakdown: breakdown,
		CreatedAt: now,
		ExpiresAt: now.Add(Validity),
	}

	if err := s.createWithReference(ctx, q); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "quote created",
		slog.String("reference", q.Reference),
		slog.String("state", q.Location.State),
		slog.String("total", breakdown.Total.StringFixed(2)))
	s.publish(events.TypeQuoteCreated, q, map[string]any{
		"total": breakdown.Total.StringFixed(2),
		"state": q.Location.State,
	})
	return q, nil
}

func (s *Service) createWithReference(ctx context.Context, q *Quote) error {
	for attempt := 0; attempt < refAttempts; attempt++ {
		ref, err := refnum.Generate(refnum.QuotePrefix)
		if err != nil {
			return derrors.New(derrors.CodeInternal, "failed to generate reference")
		}
		q.Reference = ref
		err = s.store.Create(ctx, q)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateRef) {
			return derrors.New(derrors.CodeInternal, "failed to persist quote")
		}
		s.logger.WarnContext(ctx, "reference collision, retrying",
			slog.String("reference", ref), slog.Int("attempt", attempt+1))
	}
	return derrors.New(derrors.CodeInternal, "exhausted reference generation attempts")
}

// Get returns the quote for a reference. Expiration is applied lazily: a
// QUOTED quote past its expiration instant is transitioned to EXPIRED on
// read, so callers never see a stale bindable status.
func (s *Service) Get(ctx context.Context, ref string) (*Quote, error) {
	q, err := s.store.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "quote not found")
		}
		return nil, derrors.New(derrors.CodeInternal, "failed to load quote")
	}
	return s.applyExpiry(ctx, q)
}

func (s *Service) applyExpiry(ctx context.Context, q *Quote) (*Quote, error) {
	now := requestcontext.Now(ctx)
	if q.Status != domain.StatusQuoted || !q.IsExpired(now) {
		return q, nil
	}
	err := s.store.TransitionStatus(ctx, q.ID, domain.StatusQuoted, domain.StatusExpired)
	switch {
	case err == nil:
		q.Status = domain.StatusExpired
		s.publish(events.TypeQuoteExpired, q, nil)
	case errors.Is(err, ErrStatusConflict):
		// Another reader or a bind got there first; reload for the fresh status.
		fresh, ferr := s.store.Get(ctx, q.ID)
		if ferr != nil {
			return nil, derrors.New(derrors.CodeInternal, "failed to reload quote")
		}
		q = fresh
	default:
		return nil, derrors.New(derrors.CodeInternal, "failed to expire quote")
	}
	return q, nil
}

// Rerate replaces the coverage selections and re-prices the quote. Only
// bindable quotes can be re-rated, and re-rating never extends the original
// expiration clock.
func (s *Service) Rerate(ctx context.Context, ref string, coverages []rating.CoverageSelection) (*Quote, error) {
	q, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if q.Status == domain.StatusExpired {
		return nil, derrors.New(derrors.CodeQuoteExpired, "quote has expired and can no longer be re-rated")
	}
	if q.Status != domain.StatusQuoted {
		return nil, derrors.Newf(derrors.CodeInvalidTransition, "quote in status %s cannot be re-rated", q.Status)
	}

	req := q.RateRequest()
	req.Coverages = coverages
	breakdown, err := s.rater.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	q.Coverages = coverages
	q.Breakdown = breakdown
	if err := s.store.Update(ctx, q); err != nil {
		return nil, derrors.New(derrors.CodeInternal, "failed to persist re-rated quote")
	}

	s.logger.InfoContext(ctx, "quote re-rated",
		slog.String("reference", q.Reference),
		slog.String("total", breakdown.Total.StringFixed(2)))
	s.publish(events.TypeQuoteRerated, q, map[string]any{
		"total": breakdown.Total.StringFixed(2),
	})
	return q, nil
}

// ListByAgent returns the authenticated agent's quotes, newest first.
func (s *Service) ListByAgent(ctx context.Context, agentID string) ([]*Quote, error) {
	quotes, err := s.store.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, derrors.New(derrors.CodeInternal, "failed to list quotes")
	}
	for i, q := range quotes {
		updated, err := s.applyExpiry(ctx, q)
		if err != nil {
			return nil, err
		}
		quotes[i] = updated
	}
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.After(quotes[j].CreatedAt)
	})
	return quotes, nil
}

func (s *Service) publish(eventType events.Type, q *Quote, detail map[string]any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.Event{
		Type:       eventType,
		Reference:  q.Reference,
		AgentID:    q.AgentID,
		OccurredAt: time.Now(),
		Detail:     detail,
	})
}
