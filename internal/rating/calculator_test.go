package rating

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanewise/pkg/domain"
	dErrors "lanewise/pkg/domain-errors"
	"lanewise/pkg/requestcontext"
)

// ratedAt pins the request clock for every test in this file.
var ratedAt = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func testContext() context.Context {
	return requestcontext.WithTime(context.Background(), ratedAt)
}

func birthDateForAge(age int) time.Time {
	return time.Date(ratedAt.Year()-age, time.January, 10, 0, 0, 0, 0, time.UTC)
}

// neutralRequest is built so every factor resolves to exactly 1.0 and no
// discount or surcharge is eligible: driver 35 with nine clean years (one
// short of good-driver), unremarkable vehicle, IL with an unlisted ZIP,
// liability at the state minimum only.
func neutralRequest() RateRequest {
	return RateRequest{
		Driver: DriverInput{
			BirthDate:     birthDateForAge(35),
			YearsLicensed: 9,
		},
		Vehicles: []VehicleInput{{
			Year:          ratedAt.Year() - 3,
			Make:          "Mazda",
			Model:         "CX-5",
			AnnualMileage: 9000,
			Usage:         domain.UsageCommute,
		}},
		Location: LocationInput{State: "IL", ZIP: "99901"},
		Coverages: []CoverageSelection{
			{Type: domain.CoverageLiability, Limit: 25000, Selected: true},
		},
	}
}

func TestCalculate_MultiplicativeIdentity(t *testing.T) {
	calc := NewCalculator(Convention{}, nil, nil)

	b, err := calc.Calculate(testContext(), neutralRequest())
	require.NoError(t, err)

	// Every factor must be exactly neutral.
	for _, f := range b.AllFactors() {
		assert.Equalf(t, 1.0, f.Value, "factor %s", f.Name)
	}
	assert.Equal(t, 1.0, b.TotalFactor)
	assert.Empty(t, b.Discounts)
	assert.Empty(t, b.Surcharges)

	// final total == base × (1 + tax%) + fixed fees, exactly.
	// IL taxes at 1.00% and fees total $35: 550 + 5.50 + 35 = 590.50.
	assert.True(t, b.Total.Equal(decimal.RequireFromString("590.50")), "got %s", b.Total)
}

func TestCalculate_Deterministic(t *testing.T) {
	calc := NewCalculator(Convention{}, nil, nil)
	req := scenarioYoungDriver()

	first, err := calc.Calculate(testContext(), req)
	require.NoError(t, err)
	second, err := calc.Calculate(testContext(), req)
	require.NoError(t, err)

	// Bit-identical results, compared through their serialized form.
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestCalculate_DiscountsDoNotCompound(t *testing.T) {
	calc := NewCalculator(Convention{}, nil, nil)

	// Driver 50 with a home policy: mature-driver (5%) and bundled (10%)
	// apply, nothing else does.
	req := neutralRequest()
	req.Driver.BirthDate = birthDateForAge(50)
	req.Driver.HasHomePolicy = true

	b, err := calc.Calculate(testContext(), req)
	require.NoError(t, err)
	require.Len(t, b.Discounts, 2)

	// 5% + 10% against the shared subtotal: one 15% deduction, not
	// subtotal × 0.95 × 0.90.
	want := b.Subtotal.Mul(decimal.NewFromFloat(0.15))
	assert.True(t, b.TotalDiscounts.Equal(want), "want %s got %s", want, b.TotalDiscounts)

	taxable := b.Subtotal.Sub(b.TotalDiscounts)
	compounded := b.Subtotal.Mul(decimal.NewFromFloat(0.95)).Mul(decimal.NewFromFloat(0.90))
	assert.False(t, taxable.Equal(compounded))
}

func scenarioYoungDriver() RateRequest {
	return RateRequest{
		Driver: DriverInput{
			BirthDate:     birthDateForAge(22),
			YearsLicensed: 3,
		},
		Vehicles: []VehicleInput{{
			Year:          ratedAt.Year() - 6,
			Make:          "Toyota",
			Model:         "Camry",
			AnnualMileage: 12000,
			Usage:         domain.UsageCommute,
		}},
		Location: LocationInput{State: "CA", ZIP: "95814"},
		Coverages: []CoverageSelection{
			{Type: domain.CoverageLiability, Limit: 50000, Selected: true},
			{Type: domain.CoverageCollision, Deductible: 500, Selected: true},
			{Type: domain.CoverageComprehensive, Deductible: 500, Selected: true},
		},
	}
}

// Driver age 22, clean record, standard coverage, CA: the young-driver
// surcharge applies and good-driver does not (insufficient history).
func TestCalculate_ScenarioYoungDriverCA(t *testing.T) {
	calc := NewCalculator(Convention{}, nil, nil)

	b, err := calc.Calculate(testContext(), scenarioYoungDriver())
	require.NoError(t, err)

	assert.True(t, hasAdjustment(b.Surcharges, "young-driver"))
	assert.False(t, hasAdjustment(b.Discounts, "good-driver"))
	assert.False(t, hasAdjustment(b.Surcharges, "speeding"))

	floor := basePremium.Mul(sanityFloor)
	ceiling := basePremium.Mul(sanityCeiling)
	assert.True(t, b.Total.GreaterThan(floor))
	assert.True(t, b.Total.LessThan(ceiling))
}

// Driver age 45, 25 years licensed, zero violations, 5,000 miles/year:
// mature-driver, good-driver, and low-mileage all apply and the total lands
// below the all-factors-neutral premium.
func TestCalculate_ScenarioMatureDriver(t *testing.T) {
	calc := NewCalculator(Convention{}, nil, nil)

	req := neutralRequest()
	req.Driver.BirthDate = birthDateForAge(45)
	req.Driver.YearsLicensed = 25
	req.Vehicles[0].AnnualMileage = 5000

	b, err := calc.Calculate(testContext(), req)
	require.NoError(t, err)

	assert.True(t, hasAdjustment(b.Discounts, "mature-driver"))
	assert.True(t, hasAdjustment(b.Discounts, "good-driver"))
	assert.True(t, hasAdjustment(b.Discounts, "low-mileage"))

	neutralTotal := decimal.RequireFromString("590.50")
	assert.True(t, b.Total.LessThan(neutralTotal), "total %s should be below neutral %s", b.Total, neutralTotal)
}

func TestCalculate_StateMinimumViolationsAllListed(t *testing.T) {
	calc := NewCalculator(Convention{}, nil, nil)

	// FL: PIP is required, liability is missing entirely, and collision has
	// no deductible. All three must come back at once.
	req := neutralRequest()
	req.Location.State = "FL"
	req.Coverages = []CoverageSelection{
		{Type: domain.CoverageCollision, Selected: true},
	}

	_, err := calc.Calculate(testContext(), req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCoverageBelowMinimum))
	assert.Len(t, dErrors.FieldsOf(err), 3)
}

func TestCalculate_UnderMinimumLimit(t *testing.T) {
	calc := NewCalculator(Convention{}, nil, nil)

	req := neutralRequest()
	req.Location.State = "TX" // minimum 30000
	req.Coverages = []CoverageSelection{
		{Type: domain.CoverageLiability, Limit: 25000, Selected: true},
	}

	_, err := calc.Calculate(testContext(), req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCoverageBelowMinimum))
	assert.Contains(t, err.Error(), "30000")
}

func TestCalculate_UnknownStateStillRates(t *testing.T) {
	calc := NewCalculator(Convention{}, nil, nil)

	req := neutralRequest()
	req.Location.State = "ZZ"

	b, err := calc.Calculate(testContext(), req)
	require.NoError(t, err)

	// Fallbacks are observable, not silent. Unknown states tax at 5%.
	assert.Contains(t, b.DefaultedFactors(), "location.state")
	assert.True(t, b.TaxRate.Equal(decimal.NewFromInt(5)), "got %s", b.TaxRate)
}

func TestCalculate_UnderageDriverRejected(t *testing.T) {
	calc := NewCalculator(Convention{}, nil, nil)

	req := neutralRequest()
	req.Driver.BirthDate = birthDateForAge(15)

	_, err := calc.Calculate(testContext(), req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestCalculate_BadVINRejected(t *testing.T) {
	calc := NewCalculator(Convention{}, nil, nil)

	req := neutralRequest()
	req.Vehicles[0].VIN = "1HGCM82633A004353" // checksum mismatch

	_, err := calc.Calculate(testContext(), req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidVIN))
}

// An extreme stack of factors and surcharges must surface as a defect, not a
// silently clamped premium.
func TestCalculate_OutOfBandIsInternalError(t *testing.T) {
	calc := NewCalculator(Convention{}, nil, nil)

	req := RateRequest{
		Driver: DriverInput{
			BirthDate:        birthDateForAge(16),
			YearsLicensed:    0,
			Violations:       5,
			AtFaultAccidents: 4,
			DUIConvictions:   2,
			CoverageLapsed:   true,
			CreditTier:       "poor",
		},
		Vehicles: []VehicleInput{{
			Year:          ratedAt.Year(),
			Make:          "Nissan",
			Model:         "GT-R",
			AnnualMileage: 30000,
			Usage:         domain.UsageRideshare,
			Value:         120000,
		}},
		Location: LocationInput{State: "MI", ZIP: "48201"},
		Coverages: []CoverageSelection{
			{Type: domain.CoverageLiability, Limit: 250000, Selected: true},
			{Type: domain.CoverageCollision, Deductible: 250, Selected: true},
			{Type: domain.CoverageComprehensive, Deductible: 250, Selected: true},
			{Type: domain.CoveragePIP, Limit: 10000, Selected: true},
		},
	}

	_, err := calc.Calculate(testContext(), req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func hasAdjustment(adjustments []Adjustment, code string) bool {
	for _, a := range adjustments {
		if a.Code == code {
			return true
		}
	}
	return false
}
