package domain

import dErrors "lanewise/pkg/domain-errors"

// CoverageType identifies one line of coverage on a quote.
type CoverageType string

const (
	CoverageLiability     CoverageType = "liability"
	CoverageCollision     CoverageType = "collision"
	CoverageComprehensive CoverageType = "comprehensive"
	CoverageUninsured     CoverageType = "uninsured_motorist"
	CoveragePIP           CoverageType = "pip"
	CoverageRental        CoverageType = "rental"
	CoverageRoadside      CoverageType = "roadside"
)

// validCoverageTypes is the single source of truth for supported coverages.
var validCoverageTypes = map[CoverageType]bool{
	CoverageLiability:     true,
	CoverageCollision:     true,
	CoverageComprehensive: true,
	CoverageUninsured:     true,
	CoveragePIP:           true,
	CoverageRental:        true,
	CoverageRoadside:      true,
}

// RequiresDeductible reports whether the coverage type carries a deductible.
// Only collision and comprehensive do; all other types rate with a neutral
// deductible sub-factor.
func (c CoverageType) RequiresDeductible() bool {
	return c == CoverageCollision || c == CoverageComprehensive
}

// ParseCoverageType constructs a CoverageType from external input.
func ParseCoverageType(s string) (CoverageType, error) {
	ct := CoverageType(s)
	if !validCoverageTypes[ct] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown coverage type %q", s)
	}
	return ct, nil
}

// UsageType describes how a vehicle is driven, one of the rating dimensions.
type UsageType string

const (
	UsageCommute   UsageType = "commute"
	UsagePleasure  UsageType = "pleasure"
	UsageBusiness  UsageType = "business"
	UsageRideshare UsageType = "rideshare"
)

var validUsageTypes = map[UsageType]bool{
	UsageCommute:   true,
	UsagePleasure:  true,
	UsageBusiness:  true,
	UsageRideshare: true,
}

// ParseUsageType constructs a UsageType from external input.
func ParseUsageType(s string) (UsageType, error) {
	ut := UsageType(s)
	if !validUsageTypes[ut] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown usage type %q", s)
	}
	return ut, nil
}

// PaymentMethod identifies how a policy is paid for at bind time.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentACH  PaymentMethod = "ach"
)

// ParsePaymentMethod constructs a PaymentMethod from external input.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	pm := PaymentMethod(s)
	if pm != PaymentCard && pm != PaymentACH {
		return "", dErrors.Newf(dErrors.CodeInvalidPayment, "unknown payment method %q", s)
	}
	return pm, nil
}
