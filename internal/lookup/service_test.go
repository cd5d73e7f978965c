package lookup

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contract "lanewise/contracts/lookup"
	"lanewise/internal/rating"
	"lanewise/pkg/requestcontext"
)

var fetchedAt = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

type stubProvider struct {
	decodeCalls atomic.Int32
	valueCalls  atomic.Int32
	safetyCalls atomic.Int32
	fail        bool
}

func (p *stubProvider) DecodeVIN(_ context.Context, vin string) (*contract.VehicleFacts, error) {
	p.decodeCalls.Add(1)
	if p.fail {
		return nil, ErrUnavailable
	}
	return &contract.VehicleFacts{VIN: vin, Year: 2021, Make: "Honda", Model: "Accord"}, nil
}

func (p *stubProvider) EstimateValue(_ context.Context, vin string) (*contract.ValueEstimate, error) {
	p.valueCalls.Add(1)
	if p.fail {
		return nil, ErrUnavailable
	}
	return &contract.ValueEstimate{VIN: vin, Value: 24500}, nil
}

func (p *stubProvider) SafetyRating(_ context.Context, year int, make, model string) (*contract.SafetyRecord, error) {
	p.safetyCalls.Add(1)
	if p.fail {
		return nil, ErrUnavailable
	}
	return &contract.SafetyRecord{Year: year, Make: make, Model: model, Rating: 5}, nil
}

func testLookup(provider *stubProvider) *Service {
	return NewService(provider, NewMemoryCache(24*time.Hour), slog.Default(), nil)
}

func TestPrefetchFillsMissingFields(t *testing.T) {
	provider := &stubProvider{}
	svc := testLookup(provider)
	ctx := requestcontext.WithTime(context.Background(), fetchedAt)

	got := svc.Prefetch(ctx, []rating.VehicleInput{{VIN: "1HGCM82633A004352"}})

	require.Len(t, got.Vehicles, 1)
	v := got.Vehicles[0]
	assert.Equal(t, 2021, v.Year)
	assert.Equal(t, "Honda", v.Make)
	assert.Equal(t, "Accord", v.Model)
	assert.Equal(t, int64(24500), v.Value)
	assert.Empty(t, got.Degraded)
}

func TestPrefetchKeepsProvidedFields(t *testing.T) {
	provider := &stubProvider{}
	svc := testLookup(provider)
	ctx := requestcontext.WithTime(context.Background(), fetchedAt)

	got := svc.Prefetch(ctx, []rating.VehicleInput{{
		VIN: "1HGCM82633A004352", Year: 2019, Make: "Toyota", Model: "Camry",
		Value: 18000, SafetyRating: 4,
	}})

	v := got.Vehicles[0]
	assert.Equal(t, 2019, v.Year)
	assert.Equal(t, "Toyota", v.Make)
	assert.Equal(t, int64(18000), v.Value)
	assert.Equal(t, 4, v.SafetyRating)
	assert.Equal(t, int32(0), provider.valueCalls.Load())
	assert.Equal(t, int32(0), provider.safetyCalls.Load())
}

func TestPrefetchDegradesOnProviderFailure(t *testing.T) {
	provider := &stubProvider{fail: true}
	svc := testLookup(provider)
	ctx := requestcontext.WithTime(context.Background(), fetchedAt)

	got := svc.Prefetch(ctx, []rating.VehicleInput{{VIN: "1HGCM82633A004352"}})

	v := got.Vehicles[0]
	assert.Zero(t, v.Year)
	assert.Zero(t, v.Value)
	assert.Contains(t, got.Degraded, "facts")
	assert.Contains(t, got.Degraded, "value")
}

func TestSecondPrefetchServedFromCache(t *testing.T) {
	provider := &stubProvider{}
	svc := testLookup(provider)
	ctx := requestcontext.WithTime(context.Background(), fetchedAt)

	_ = svc.Prefetch(ctx, []rating.VehicleInput{{VIN: "1HGCM82633A004352"}})
	decodes := provider.decodeCalls.Load()
	_ = svc.Prefetch(ctx, []rating.VehicleInput{{VIN: "1HGCM82633A004352"}})

	assert.Equal(t, decodes, provider.decodeCalls.Load())
}

func TestCacheEntryExpiresAfterTTL(t *testing.T) {
	provider := &stubProvider{}
	svc := testLookup(provider)

	ctx := requestcontext.WithTime(context.Background(), fetchedAt)
	_ = svc.Prefetch(ctx, []rating.VehicleInput{{VIN: "1HGCM82633A004352"}})
	decodes := provider.decodeCalls.Load()

	// A day later the entry counts as stale and the provider is hit again.
	dayLater := requestcontext.WithTime(context.Background(), fetchedAt.Add(24*time.Hour))
	_ = svc.Prefetch(dayLater, []rating.VehicleInput{{VIN: "1HGCM82633A004352"}})

	assert.Greater(t, provider.decodeCalls.Load(), decodes)
}

func TestVehicleWithoutVINIsSkipped(t *testing.T) {
	provider := &stubProvider{}
	svc := testLookup(provider)
	ctx := requestcontext.WithTime(context.Background(), fetchedAt)

	got := svc.Prefetch(ctx, []rating.VehicleInput{{Year: 2020, Make: "Ford", Model: "Escape"}})

	assert.Equal(t, int32(0), provider.decodeCalls.Load())
	assert.Equal(t, "Ford", got.Vehicles[0].Make)
}
