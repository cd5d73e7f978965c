package rating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanewise/pkg/domain"
)

func factorByName(t *testing.T, factors []Factor, name string) Factor {
	t.Helper()
	for _, f := range factors {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("factor %s not found in %v", name, factors)
	return Factor{}
}

func TestVehicleFactors_AgeTiers(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		year int
		want float64
	}{
		{2026, 1.15},
		{2025, 1.15},
		{2024, 1.00},
		{2021, 1.00},
		{2020, 0.90},
		{2016, 0.90},
		{2010, 0.85},
	}
	for _, tc := range cases {
		v := VehicleInput{Year: tc.year, Usage: domain.UsageCommute}
		got := factorByName(t, resolveVehicleFactors(v, now), "vehicle.age")
		assert.Equalf(t, tc.want, got.Value, "model year %d", tc.year)
	}
}

func TestVehicleFactors_UnknownModelDefaultsObservably(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	v := VehicleInput{Year: 2023, Make: "Zorin", Model: "Quasar", Usage: domain.UsageCommute}

	f := factorByName(t, resolveVehicleFactors(v, now), "vehicle.model_class")
	assert.Equal(t, 1.0, f.Value)
	assert.True(t, f.Default, "unknown make/model must be flagged as a default, not an indistinguishable 1.0")

	known := VehicleInput{Year: 2023, Make: "Toyota", Model: "Camry", Usage: domain.UsageCommute}
	kf := factorByName(t, resolveVehicleFactors(known, now), "vehicle.model_class")
	assert.False(t, kf.Default)
	assert.Equal(t, 0.95, kf.Value)
}

func TestDriverFactors_AgeDiscontinuityAtBands(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		age  int
		want float64
	}{
		{16, 1.80},
		{19, 1.80},
		{20, 1.50},
		{24, 1.50},
		{25, 1.20},
		{30, 1.00},
		{64, 1.00},
		{65, 1.10},
		{75, 1.30},
	}
	for _, tc := range cases {
		d := DriverInput{
			BirthDate:     time.Date(now.Year()-tc.age, time.January, 1, 0, 0, 0, 0, time.UTC),
			YearsLicensed: 10,
		}
		got := factorByName(t, resolveDriverFactors(d, now), "driver.age")
		assert.Equalf(t, tc.want, got.Value, "age %d", tc.age)
	}
}

func TestDriverFactors_RecordSubFactorsMultiply(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	d := DriverInput{
		BirthDate:        time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC),
		YearsLicensed:    15,
		Violations:       2,
		AtFaultAccidents: 1,
	}

	factors := resolveDriverFactors(d, now)
	violations := factorByName(t, factors, "driver.violations")
	accidents := factorByName(t, factors, "driver.accidents")

	assert.InDelta(t, 1.20, violations.Value, 1e-9)
	assert.InDelta(t, 1.20, accidents.Value, 1e-9)

	// Sub-factors multiply, they are never summed, so one dimension cannot
	// cancel another.
	product := 1.0
	for _, f := range factors {
		product *= f.Value
	}
	assert.Greater(t, product, violations.Value)
	assert.Greater(t, product, accidents.Value)
}

func TestLocationFactors_UnknownZIPFallsBackToState(t *testing.T) {
	factors := resolveLocationFactors(LocationInput{State: "CA", ZIP: "93401"})

	state := factorByName(t, factors, "location.state")
	territory := factorByName(t, factors, "location.territory")

	assert.Equal(t, 1.25, state.Value)
	assert.False(t, state.Default)
	assert.Equal(t, 1.0, territory.Value)
	assert.True(t, territory.Default, "unlisted ZIP rates at the state level with the fallback flagged")
}

func TestLocationFactors_KnownTerritory(t *testing.T) {
	factors := resolveLocationFactors(LocationInput{State: "CA", ZIP: "90012"})
	territory := factorByName(t, factors, "location.territory")
	require.False(t, territory.Default)
	assert.Equal(t, 1.25, territory.Value)
}

func TestCoverageFactors_DeductibleOnlyForCollisionComprehensive(t *testing.T) {
	coverages := []CoverageSelection{
		{Type: domain.CoverageLiability, Limit: 100000, Selected: true},
		{Type: domain.CoverageCollision, Deductible: 1000, Selected: true},
		{Type: domain.CoverageRental, Deductible: 1000, Selected: true}, // deductible ignored
		{Type: domain.CoverageRoadside, Selected: true},
		{Type: domain.CoveragePIP, Limit: 10000, Selected: false}, // unselected: no factor
	}

	factors := resolveCoverageFactors(coverages)
	require.Len(t, factors, 4)

	assert.Equal(t, 1.25, factorByName(t, factors, "coverage.liability_limit").Value)
	assert.InDelta(t, 1.20*0.90, factorByName(t, factors, "coverage.collision").Value, 1e-9)
	// Rental carries no deductible sub-factor even when one is supplied.
	assert.Equal(t, 1.02, factorByName(t, factors, "coverage.rental").Value)
}
