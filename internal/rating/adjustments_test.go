package rating

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanewise/pkg/domain"
)

var adjustedAt = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func adjustmentRequest(age int) RateRequest {
	return RateRequest{
		Driver: DriverInput{
			BirthDate:     time.Date(adjustedAt.Year()-age, time.January, 10, 0, 0, 0, 0, time.UTC),
			YearsLicensed: 9,
		},
		Vehicles: []VehicleInput{{
			Year:          2023,
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

func TestYoungAndMatureMutuallyExclusive(t *testing.T) {
	subtotal := decimal.NewFromInt(1000)

	for age := 16; age <= 80; age++ {
		req := adjustmentRequest(age)
		discounts, _ := evaluateAdjustments(discountRules, req, subtotal, adjustedAt, Convention{})
		surcharges, _ := evaluateAdjustments(surchargeRules, req, subtotal, adjustedAt, Convention{})

		young := hasAdjustment(surcharges, "young-driver")
		mature := hasAdjustment(discounts, "mature-driver")
		if young && mature {
			t.Fatalf("age %d triggers both young-driver and mature-driver", age)
		}
	}
}

func TestFlatAdjustmentsExcludedFromPercentageBase(t *testing.T) {
	subtotal := decimal.NewFromInt(1000)

	// Defensive course (flat $25) plus bundled (10%).
	req := adjustmentRequest(35)
	req.Driver.DefensiveCourse = true
	req.Driver.HasHomePolicy = true

	discounts, total := evaluateAdjustments(discountRules, req, subtotal, adjustedAt, Convention{})
	require.Len(t, discounts, 2)

	// Default convention: the 10% is computed on 1000, not on 1025.
	assert.True(t, total.Equal(decimal.NewFromInt(125)), "got %s", total)
}

func TestFlatAdjustmentsInPercentageBaseConvention(t *testing.T) {
	subtotal := decimal.NewFromInt(1000)

	req := adjustmentRequest(35)
	req.Driver.DefensiveCourse = true
	req.Driver.HasHomePolicy = true

	_, total := evaluateAdjustments(discountRules, req, subtotal, adjustedAt, Convention{FlatInPercentageBase: true})

	// 10% of (1000 + 25) + 25 flat.
	assert.True(t, total.Equal(decimal.RequireFromString("127.5")), "got %s", total)
}

func TestSurchargeCatalog(t *testing.T) {
	subtotal := decimal.NewFromInt(1000)

	req := adjustmentRequest(35)
	req.Driver.DUIConvictions = 1
	req.Driver.Violations = 2
	req.Driver.AtFaultAccidents = 1
	req.Driver.CoverageLapsed = true
	req.Driver.CreditTier = "poor"
	req.Location.ZIP = "48226" // Detroit, high-risk territory

	surcharges, total := evaluateAdjustments(surchargeRules, req, subtotal, adjustedAt, Convention{})

	for _, code := range []string{"dui", "speeding", "at-fault-accident", "lapsed-coverage", "high-risk-zip", "poor-credit"} {
		assert.Truef(t, hasAdjustment(surcharges, code), "expected surcharge %s", code)
	}
	assert.False(t, hasAdjustment(surcharges, "young-driver"))

	// 35 + 8 + 12 + 10 + 10 = 75% of 1000, plus $75 flat.
	assert.True(t, total.Equal(decimal.NewFromInt(825)), "got %s", total)
}

func TestAdjustmentOrderIsStable(t *testing.T) {
	subtotal := decimal.NewFromInt(1000)
	req := adjustmentRequest(50)
	req.Driver.YearsLicensed = 20 // good-driver + mature-driver
	req.Vehicles = append(req.Vehicles, VehicleInput{Year: 2022, Usage: domain.UsagePleasure})

	discounts, _ := evaluateAdjustments(discountRules, req, subtotal, adjustedAt, Convention{})
	require.Len(t, discounts, 3)

	// Applied order follows catalog order, giving reproducible breakdowns.
	assert.Equal(t, "good-driver", discounts[0].Code)
	assert.Equal(t, "mature-driver", discounts[1].Code)
	assert.Equal(t, "multi-car", discounts[2].Code)
}
