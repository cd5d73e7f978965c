package rating

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"lanewise/internal/rating/metrics"
	"lanewise/pkg/domain"
	dErrors "lanewise/pkg/domain-errors"
	"lanewise/pkg/requestcontext"
	"lanewise/pkg/vin"
)

// basePremium is the six-month base rate every factor multiplies against.
var basePremium = decimal.NewFromInt(550)

// Sanity band for the final total, expressed as multiples of the base
// premium. An out-of-band result is a defect to surface, never something to
// clamp silently.
var (
	sanityFloor   = decimal.NewFromFloat(0.4)
	sanityCeiling = decimal.NewFromFloat(8.0)
)

// minimumDrivingAge is the legal floor for the driver age bands.
const minimumDrivingAge = 16

// Calculator composes the four factor resolvers, the discount/surcharge
// evaluator, and the tax/fee calculator into one premium breakdown.
//
// Calculate is deterministic and side-effect-free given identical input and
// request time, which makes re-rating on coverage change idempotent.
type Calculator struct {
	convention Convention
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewCalculator constructs a Calculator. logger and metrics may be nil in
// tests.
func NewCalculator(convention Convention, logger *slog.Logger, m *metrics.Metrics) *Calculator {
	return &Calculator{convention: convention, logger: logger, metrics: m}
}

// Calculate validates the request and produces the full premium breakdown.
// The request time comes from the context so expiration-adjacent callers and
// tests share one clock.
func (c *Calculator) Calculate(ctx context.Context, req RateRequest) (*PremiumBreakdown, error) {
	start := time.Now()
	now := requestcontext.Now(ctx)

	if err := validateRequest(req, now); err != nil {
		return nil, err
	}

	breakdown := &PremiumBreakdown{BasePremium: basePremium}

	// The resolvers are pure and share no state; run them as a fork-join.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		breakdown.VehicleFactors = resolveVehicleFactors(req.Primary(), now)
		return nil
	})
	g.Go(func() error {
		breakdown.DriverFactors = resolveDriverFactors(req.Driver, now)
		return nil
	})
	g.Go(func() error {
		breakdown.LocationFactors = resolveLocationFactors(req.Location)
		return nil
	})
	g.Go(func() error {
		breakdown.CoverageFactors = resolveCoverageFactors(req.Coverages)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 1.0
	for _, f := range breakdown.AllFactors() {
		if f.Value <= 0 {
			return nil, dErrors.Newf(dErrors.CodeInternal, "factor %s resolved to non-positive value %v", f.Name, f.Value)
		}
		total *= f.Value
	}
	breakdown.TotalFactor = total
	breakdown.Subtotal = basePremium.Mul(decimal.NewFromFloat(total))

	breakdown.Discounts, breakdown.TotalDiscounts = evaluateAdjustments(discountRules, req, breakdown.Subtotal, now, c.convention)
	breakdown.Surcharges, breakdown.TotalSurcharges = evaluateAdjustments(surchargeRules, req, breakdown.Subtotal, now, c.convention)

	taxable := breakdown.Subtotal.Sub(breakdown.TotalDiscounts).Add(breakdown.TotalSurcharges)
	var fees []Fee
	breakdown.TaxRate, breakdown.TaxAmount, fees, breakdown.TotalFees = applyTaxAndFees(req.Location.State, taxable)
	breakdown.Fees = fees

	// Round to cents once, at the very end.
	breakdown.Total = taxable.Add(breakdown.TaxAmount).Add(breakdown.TotalFees).Round(2)

	if err := checkSanityBand(breakdown.Total); err != nil {
		if c.logger != nil {
			c.logger.ErrorContext(ctx, "premium outside sanity band",
				"total", breakdown.Total.String(),
				"total_factor", breakdown.TotalFactor,
				"state", req.Location.State,
			)
		}
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.ObserveCalculation(req.Location.State, time.Since(start))
		for _, name := range breakdown.DefaultedFactors() {
			c.metrics.IncrementDefaultedFactor(name)
		}
	}
	if c.logger != nil {
		c.logger.InfoContext(ctx, "premium calculated",
			"request_id", requestcontext.RequestID(ctx),
			"state", req.Location.State,
			"total_factor", fmt.Sprintf("%.4f", breakdown.TotalFactor),
			"total", breakdown.Total.String(),
			"defaulted_factors", breakdown.DefaultedFactors(),
		)
	}

	return breakdown, nil
}

// checkSanityBand rejects totals that cannot be right. A premium at or below
// zero, or outside the documented band, signals a defect in the tables or
// the composition, not a caller mistake.
func checkSanityBand(total decimal.Decimal) error {
	if !total.IsPositive() {
		return dErrors.Newf(dErrors.CodeInternal, "premium resolved to non-positive total %s", total)
	}
	floor := basePremium.Mul(sanityFloor)
	ceiling := basePremium.Mul(sanityCeiling)
	if total.LessThan(floor) || total.GreaterThan(ceiling) {
		return dErrors.Newf(dErrors.CodeInternal, "premium %s outside sanity band [%s, %s]", total, floor, ceiling)
	}
	return nil
}

// validateRequest checks structural input and coverage selections against
// state minimums. Minimum violations are collected so the caller sees every
// problem at once, not just the first.
func validateRequest(req RateRequest, now time.Time) error {
	if len(req.Vehicles) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one vehicle is required").WithFields("vehicles")
	}
	if req.Driver.BirthDate.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "driver birth date is required").WithFields("driver.birth_date")
	}
	if age := req.Driver.Age(now); age < minimumDrivingAge {
		return dErrors.Newf(dErrors.CodeInvalidInput, "driver age %d is below the minimum driving age of %d", age, minimumDrivingAge).
			WithFields("driver.birth_date")
	}
	if req.Driver.YearsLicensed < 0 || req.Driver.Violations < 0 || req.Driver.AtFaultAccidents < 0 || req.Driver.DUIConvictions < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "driver history counts must be non-negative").
			WithFields("driver")
	}
	if req.Location.State == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "garaging state is required").WithFields("location.state")
	}
	for i, v := range req.Vehicles {
		field := fmt.Sprintf("vehicles[%d]", i)
		if v.Year < 1950 || v.Year > now.Year()+1 {
			return dErrors.Newf(dErrors.CodeInvalidInput, "vehicle year %d out of range", v.Year).WithFields(field + ".year")
		}
		if v.AnnualMileage < 0 {
			return dErrors.New(dErrors.CodeInvalidInput, "annual mileage must be non-negative").WithFields(field + ".annual_mileage")
		}
		if v.VIN != "" {
			if err := vin.Validate(v.VIN); err != nil {
				return err
			}
		}
	}
	return validateCoverages(req.Coverages, req.Location.State)
}

// validateCoverages enforces the coverage invariants: liability mandatory and
// at or above the state minimum, deductibles present on collision and
// comprehensive, all amounts non-negative.
func validateCoverages(coverages []CoverageSelection, state string) error {
	var liability *CoverageSelection
	var violations []string

	for i := range coverages {
		c := coverages[i]
		if !c.Selected {
			continue
		}
		field := "coverages." + string(c.Type)
		if c.Limit < 0 || c.Deductible < 0 {
			return dErrors.New(dErrors.CodeInvalidInput, "coverage amounts must be non-negative").WithFields(field)
		}
		if c.Type == domain.CoverageLiability {
			liability = &coverages[i]
		}
		if c.Type.RequiresDeductible() && c.Deductible == 0 {
			violations = append(violations, fmt.Sprintf("%s requires a deductible", c.Type))
		}
	}

	minLiability := minLiabilityFor(state)
	if liability == nil {
		violations = append(violations, "liability coverage is mandatory")
	} else if liability.Limit < minLiability {
		violations = append(violations, fmt.Sprintf("liability limit %d below state minimum %d for %s", liability.Limit, minLiability, state))
	}

	if params, ok := stateFor(state); ok && params.PIPRequired {
		hasPIP := false
		for _, c := range coverages {
			if c.Selected && c.Type == domain.CoveragePIP {
				hasPIP = true
			}
		}
		if !hasPIP {
			violations = append(violations, fmt.Sprintf("personal injury protection is required in %s", state))
		}
	}

	if len(violations) > 0 {
		err := dErrors.New(dErrors.CodeCoverageBelowMinimum, "coverage selections violate state minimums")
		return err.WithFields(violations...)
	}
	return nil
}
