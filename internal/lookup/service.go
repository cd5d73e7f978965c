package lookup

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	contract "lanewise/contracts/lookup"
	"lanewise/internal/lookup/metrics"
	"lanewise/internal/rating"
	"lanewise/pkg/requestcontext"
)

const prefetchTimeout = 10 * time.Second

// Enrichment is the outcome of a prefetch: the filled-in vehicle inputs plus
// the sources that degraded to defaults.
type Enrichment struct {
	Vehicles []rating.VehicleInput
	Degraded []string
}

// Service prefetches vehicle data before rating. Cache first, provider on a
// miss, neutral defaults when both fail.
type Service struct {
	provider Provider
	cache    Cache
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(provider Provider, cache Cache, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{provider: provider, cache: cache, logger: logger, metrics: m}
}

// Prefetch fills missing vehicle fields from the provider. All lookups for
// all vehicles run concurrently; any lookup that fails leaves its field at
// the zero value so rating falls back to neutral factors.
func (s *Service) Prefetch(ctx context.Context, vehicles []rating.VehicleInput) Enrichment {
	ctx, cancel := context.WithTimeout(ctx, prefetchTimeout)
	defer cancel()

	out := Enrichment{Vehicles: make([]rating.VehicleInput, len(vehicles))}
	copy(out.Vehicles, vehicles)

	var mu sync.Mutex
	degraded := func(source string) {
		mu.Lock()
		out.Degraded = append(out.Degraded, source)
		mu.Unlock()
		s.metrics.RecordDegraded(source)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range out.Vehicles {
		v := &out.Vehicles[i]
		if v.VIN == "" {
			continue
		}

		g.Go(func() error {
			facts, err := s.facts(ctx, v.VIN)
			if err != nil {
				s.logger.WarnContext(ctx, "vin decode degraded",
					slog.String("vin", v.VIN), slog.String("error", err.Error()))
				degraded("facts")
				return nil
			}
			mu.Lock()
			if v.Year == 0 {
				v.Year = facts.Year
			}
			if v.Make == "" {
				v.Make = facts.Make
			}
			if v.Model == "" {
				v.Model = facts.Model
			}
			mu.Unlock()
			return nil
		})

		if v.Value == 0 {
			g.Go(func() error {
				estimate, err := s.value(ctx, v.VIN)
				if err != nil {
					s.logger.WarnContext(ctx, "value estimate degraded",
						slog.String("vin", v.VIN), slog.String("error", err.Error()))
					degraded("value")
					return nil
				}
				mu.Lock()
				v.Value = int64(estimate.Value)
				mu.Unlock()
				return nil
			})
		}

		if v.SafetyRating == 0 && v.Year > 0 && v.Make != "" && v.Model != "" {
			year, mk, model := v.Year, v.Make, v.Model
			g.Go(func() error {
				record, err := s.safety(ctx, year, mk, model)
				if err != nil {
					s.logger.WarnContext(ctx, "safety rating degraded",
						slog.String("model", strings.ToLower(mk+" "+model)),
						slog.String("error", err.Error()))
					degraded("safety")
					return nil
				}
				mu.Lock()
				v.SafetyRating = record.Rating
				mu.Unlock()
				return nil
			})
		}
	}

	// Lookups swallow their own failures, so Wait only reports ctx errors.
	_ = g.Wait()
	return out
}

func (s *Service) facts(ctx context.Context, vin string) (*contract.VehicleFacts, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveLookupDuration("facts", time.Since(start).Seconds()) }()

	if cached, err := s.cache.GetFacts(ctx, vin); err == nil {
		s.metrics.RecordCacheHit("facts")
		return cached, nil
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.WarnContext(ctx, "facts cache read failed", slog.String("error", err.Error()))
	}
	s.metrics.RecordCacheMiss("facts")

	facts, err := s.provider.DecodeVIN(ctx, vin)
	if err != nil {
		return nil, err
	}
	facts.FetchedAt = requestcontext.Now(ctx)
	if err := s.cache.SaveFacts(ctx, facts); err != nil {
		s.logger.WarnContext(ctx, "facts cache write failed", slog.String("error", err.Error()))
	}
	return facts, nil
}

func (s *Service) value(ctx context.Context, vin string) (*contract.ValueEstimate, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveLookupDuration("value", time.Since(start).Seconds()) }()

	if cached, err := s.cache.GetValue(ctx, vin); err == nil {
		s.metrics.RecordCacheHit("value")
		return cached, nil
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.WarnContext(ctx, "value cache read failed", slog.String("error", err.Error()))
	}
	s.metrics.RecordCacheMiss("value")

	estimate, err := s.provider.EstimateValue(ctx, vin)
	if err != nil {
		return nil, err
	}
	estimate.FetchedAt = requestcontext.Now(ctx)
	if err := s.cache.SaveValue(ctx, estimate); err != nil {
		s.logger.WarnContext(ctx, "value cache write failed", slog.String("error", err.Error()))
	}
	return estimate, nil
}

func (s *Service) safety(ctx context.Context, year int, mk, model string) (*contract.SafetyRecord, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveLookupDuration("safety", time.Since(start).Seconds()) }()

	if cached, err := s.cache.GetSafety(ctx, year, mk, model); err == nil {
		s.metrics.RecordCacheHit("safety")
		return cached, nil
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.WarnContext(ctx, "safety cache read failed", slog.String("error", err.Error()))
	}
	s.metrics.RecordCacheMiss("safety")

	record, err := s.provider.SafetyRating(ctx, year, mk, model)
	if err != nil {
		return nil, err
	}
	record.FetchedAt = requestcontext.Now(ctx)
	if err := s.cache.SaveSafety(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "safety cache write failed", slog.String("error", err.Error()))
	}
	return record, nil
}
