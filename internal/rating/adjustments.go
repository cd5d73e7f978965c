package rating

import (
	"time"

	"github.com/shopspring/decimal"
)

// The discount/surcharge catalog. Every code has a deterministic eligibility
// predicate over the quote snapshot. Predicates are independent and not
// mutually exclusive, with one documented exception: young-driver (under 25)
// and mature-driver (45 through 69) partition by age range and can never
// co-apply.

// adjustmentRule is one catalog entry.
type adjustmentRule struct {
	Code     string
	Kind     AdjustmentKind
	Value    decimal.Decimal // percentage points, or dollars for flat
	Eligible func(req RateRequest, now time.Time) bool
}

var discountRules = []adjustmentRule{
	{
		Code: "good-driver", Kind: KindPercentage, Value: decimal.NewFromInt(15),
		// Requires a decade of clean history; a 22-year-old cannot qualify.
		Eligible: func(req RateRequest, now time.Time) bool {
			d := req.Driver
			return d.YearsLicensed >= 10 && d.Violations == 0 && d.AtFaultAccidents == 0 && d.DUIConvictions == 0
		},
	},
	{
		Code: "mature-driver", Kind: KindPercentage, Value: decimal.NewFromInt(5),
		Eligible: func(req RateRequest, now time.Time) bool {
			age := req.Driver.Age(now)
			return age >= 45 && age <= 69
		},
	},
	{
		Code: "multi-car", Kind: KindPercentage, Value: decimal.NewFromInt(10),
		Eligible: func(req RateRequest, now time.Time) bool {
			return len(req.Vehicles) >= 2
		},
	},
	{
		Code: "low-mileage", Kind: KindPercentage, Value: decimal.NewFromInt(8),
		Eligible: func(req RateRequest, now time.Time) bool {
			mileage := req.Primary().AnnualMileage
			return mileage > 0 && mileage <= 7500
		},
	},
	{
		Code: "anti-theft", Kind: KindPercentage, Value: decimal.NewFromInt(5),
		Eligible: func(req RateRequest, now time.Time) bool {
			return req.Primary().AntiTheft
		},
	},
	{
		Code: "safety-features", Kind: KindPercentage, Value: decimal.NewFromInt(5),
		Eligible: func(req RateRequest, now time.Time) bool {
			return req.Primary().SafetyRating >= 4
		},
	},
	{
		Code: "defensive-driving", Kind: KindFlat, Value: decimal.NewFromInt(25),
		Eligible: func(req RateRequest, now time.Time) bool {
			return req.Driver.DefensiveCourse
		},
	},
	{
		Code: "bundled", Kind: KindPercentage, Value: decimal.NewFromInt(10),
		Eligible: func(req RateRequest, now time.Time) bool {
			return req.Driver.HasHomePolicy
		},
	},
}

var surchargeRules = []adjustmentRule{
	{
		Code: "young-driver", Kind: KindPercentage, Value: decimal.NewFromInt(20),
		Eligible: func(req RateRequest, now time.Time) bool {
			return req.Driver.Age(now) < 25
		},
	},
	{
		Code: "dui", Kind: KindPercentage, Value: decimal.NewFromInt(35),
		Eligible: func(req RateRequest, now time.Time) bool {
			return req.Driver.DUIConvictions > 0
		},
	},
	{
		Code: "high-performance-vehicle", Kind: KindPercentage, Value: decimal.NewFromInt(25),
		Eligible: func(req RateRequest, now time.Time) bool {
			return highPerformanceModels[modelKey(req.Primary())]
		},
	},
	{
		Code: "at-fault-accident", Kind: KindPercentage, Value: decimal.NewFromInt(12),
		Eligible: func(req RateRequest, now time.Time) bool {
			return req.Driver.AtFaultAccidents > 0
		},
	},
	{
		Code: "speeding", Kind: KindPercentage, Value: decimal.NewFromInt(8),
		Eligible: func(req RateRequest, now time.Time) bool {
			return req.Driver.Violations > 0
		},
	},
	{
		Code: "lapsed-coverage", Kind: KindPercentage, Value: decimal.NewFromInt(10),
		Eligible: func(req RateRequest, now time.Time) bool {
			return req.Driver.CoverageLapsed
		},
	},
	{
		Code: "high-risk-zip", Kind: KindPercentage, Value: decimal.NewFromInt(10),
		Eligible: func(req RateRequest, now time.Time) bool {
			return highRiskZIPs[zipPrefix(req.Location.ZIP)]
		},
	},
	{
		Code: "poor-credit", Kind: KindFlat, Value: decimal.NewFromInt(75),
		Eligible: func(req RateRequest, now time.Time) bool {
			return req.Driver.CreditTier == "poor"
		},
	},
}

// Convention controls how flat amounts interact with the percentage base.
// The observed behavior upstream is ambiguous, so the choice is explicit
// configuration rather than a guess. Default (false): percentages are
// computed against the pre-adjustment subtotal only.
type Convention struct {
	FlatInPercentageBase bool
}

// evaluateAdjustments applies the catalog against the subtotal.
//
// Percentages stack additively against one shared base and are summed into a
// single deduction or addition: total = base × Σ(pct)/100 + Σ(flat). They are
// never compounded against each other, so the result cannot depend on
// evaluation order.
func evaluateAdjustments(rules []adjustmentRule, req RateRequest, subtotal decimal.Decimal, now time.Time, conv Convention) ([]Adjustment, decimal.Decimal) {
	applied := make([]Adjustment, 0, 4)
	hundred := decimal.NewFromInt(100)

	var flatSum decimal.Decimal
	for _, rule := range rules {
		if rule.Kind == KindFlat && rule.Eligible(req, now) {
			flatSum = flatSum.Add(rule.Value)
		}
	}

	base := subtotal
	if conv.FlatInPercentageBase {
		base = base.Add(flatSum)
	}

	total := decimal.Zero
	for _, rule := range rules {
		if !rule.Eligible(req, now) {
			continue
		}
		adj := Adjustment{Code: rule.Code, Kind: rule.Kind, Value: rule.Value}
		switch rule.Kind {
		case KindPercentage:
			adj.Amount = base.Mul(rule.Value).Div(hundred)
		case KindFlat:
			adj.Amount = rule.Value
		}
		applied = append(applied, adj)
		total = total.Add(adj.Amount)
	}

	return applied, total
}
