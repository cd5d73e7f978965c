package rating

import (
	"time"

	"github.com/shopspring/decimal"

	"lanewise/pkg/domain"
)

// DriverInput is the driver snapshot a rate request carries. Lookup
// collaborators run before rating, so everything the resolvers need is
// already on the input.
type DriverInput struct {
	BirthDate        time.Time `json:"birth_date"`
	YearsLicensed    int       `json:"years_licensed"`
	Violations       int       `json:"violations"`
	AtFaultAccidents int       `json:"at_fault_accidents"`
	DUIConvictions   int       `json:"dui_convictions"`
	DefensiveCourse  bool      `json:"defensive_course"`
	CoverageLapsed   bool      `json:"coverage_lapsed"`
	CreditTier       string    `json:"credit_tier,omitempty"` // "good", "fair", "poor"
	HasHomePolicy    bool      `json:"has_home_policy"`
}

// Age computes the driver's age in whole years at the given instant.
func (d DriverInput) Age(now time.Time) int {
	age := now.Year() - d.BirthDate.Year()
	if now.YearDay() < d.BirthDate.YearDay() {
		age--
	}
	return age
}

// VehicleInput is one vehicle on the quote. Value and SafetyRating come from
// the valuation and safety collaborators; zero means the lookup was
// unavailable and the resolver falls back to a neutral factor.
type VehicleInput struct {
	Year          int              `json:"year"`
	Make          string           `json:"make"`
	Model         string           `json:"model"`
	VIN           string           `json:"vin,omitempty"`
	AnnualMileage int              `json:"annual_mileage"`
	Usage         domain.UsageType `json:"usage"`
	AntiTheft     bool             `json:"anti_theft"`
	SafetyRating  int              `json:"safety_rating,omitempty"` // 1..5, 0 unknown
	Value         int64            `json:"value,omitempty"`         // dollars, 0 unknown
}

// LocationInput is the garaging location.
type LocationInput struct {
	State string `json:"state"`
	ZIP   string `json:"zip"`
}

// CoverageSelection is one selected line of coverage.
// Invariants: liability is mandatory on every quote; collision and
// comprehensive require a deductible; limits and deductibles are non-negative.
type CoverageSelection struct {
	Type       domain.CoverageType `json:"type"`
	Limit      int64               `json:"limit,omitempty"`      // dollars
	Deductible int64               `json:"deductible,omitempty"` // dollars
	Selected   bool                `json:"selected"`
}

// RateRequest is the full input to the premium calculator.
type RateRequest struct {
	Driver    DriverInput         `json:"driver"`
	Vehicles  []VehicleInput      `json:"vehicles"`
	Location  LocationInput       `json:"location"`
	Coverages []CoverageSelection `json:"coverages"`
}

// Primary returns the first vehicle. Additional vehicles contribute through
// the multi-car discount rather than through stacked factors.
func (r RateRequest) Primary() VehicleInput {
	if len(r.Vehicles) == 0 {
		return VehicleInput{}
	}
	return r.Vehicles[0]
}

// Factor is one dimensionless rating multiplier. Default marks a neutral
// fallback (unknown make, missing lookup) so callers and tests can tell a
// computed 1.0 from a defaulted one.
type Factor struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Default bool    `json:"default,omitempty"`
}

// AdjustmentKind distinguishes percentage adjustments from flat amounts.
type AdjustmentKind string

const (
	KindPercentage AdjustmentKind = "percentage"
	KindFlat       AdjustmentKind = "flat"
)

// Adjustment is one applied discount or surcharge.
type Adjustment struct {
	Code   string          `json:"code"`
	Kind   AdjustmentKind  `json:"kind"`
	Value  decimal.Decimal `json:"value"`  // percentage points, or dollars for flat
	Amount decimal.Decimal `json:"amount"` // resulting dollars
}

// Fee is a fixed, untaxed charge.
type Fee struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// PremiumBreakdown is the complete rating result.
//
// Invariant: Total = ((BasePremium × Π factors) − TotalDiscounts +
// TotalSurcharges) × (1 + TaxRate/100) + TotalFees, rounded to cents at the
// final step only so per-factor rounding error cannot compound.
type PremiumBreakdown struct {
	BasePremium decimal.Decimal `json:"base_premium"`

	VehicleFactors  []Factor `json:"vehicle_factors"`
	DriverFactors   []Factor `json:"driver_factors"`
	LocationFactors []Factor `json:"location_factors"`
	CoverageFactors []Factor `json:"coverage_factors"`
	TotalFactor     float64  `json:"total_factor"`

	Subtotal decimal.Decimal `json:"subtotal"` // base × total factor, unrounded

	Discounts       []Adjustment    `json:"discounts"`
	Surcharges      []Adjustment    `json:"surcharges"`
	TotalDiscounts  decimal.Decimal `json:"total_discounts"`
	TotalSurcharges decimal.Decimal `json:"total_surcharges"`

	TaxRate   decimal.Decimal `json:"tax_rate"` // percent
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Fees      []Fee           `json:"fees"`
	TotalFees decimal.Decimal `json:"total_fees"`

	Total decimal.Decimal `json:"total"` // rounded to cents
}

// AllFactors returns every factor in category order, for composing the total
// multiplier and for observability.
func (b *PremiumBreakdown) AllFactors() []Factor {
	out := make([]Factor, 0, len(b.VehicleFactors)+len(b.DriverFactors)+len(b.LocationFactors)+len(b.CoverageFactors))
	out = append(out, b.VehicleFactors...)
	out = append(out, b.DriverFactors...)
	out = append(out, b.LocationFactors...)
	out = append(out, b.CoverageFactors...)
	return out
}

// DefaultedFactors lists the names of factors that fell back to neutral.
func (b *PremiumBreakdown) DefaultedFactors() []string {
	var names []string
	for _, f := range b.AllFactors() {
		if f.Default {
			names = append(names, f.Name)
		}
	}
	return names
}
