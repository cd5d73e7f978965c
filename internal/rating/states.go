package rating

import "github.com/shopspring/decimal"

// stateParams holds the per-state rating inputs. Placeholder minimums only;
// multi-state regulatory fidelity is out of scope.
type stateParams struct {
	Factor            float64
	TaxPercent        decimal.Decimal
	MinLiabilityLimit int64
	PIPRequired       bool
}

// defaultTaxPercent applies when the state is unknown. The quote still rates;
// the fallback is surfaced through the defaulted location factor.
var defaultTaxPercent = decimal.NewFromInt(5)

var stateTable = map[string]stateParams{
	"CA": {Factor: 1.25, TaxPercent: decimal.NewFromFloat(2.35), MinLiabilityLimit: 15000},
	"NY": {Factor: 1.30, TaxPercent: decimal.NewFromFloat(2.00), MinLiabilityLimit: 25000, PIPRequired: true},
	"TX": {Factor: 1.10, TaxPercent: decimal.NewFromFloat(1.60), MinLiabilityLimit: 30000},
	"FL": {Factor: 1.35, TaxPercent: decimal.NewFromFloat(1.75), MinLiabilityLimit: 10000, PIPRequired: true},
	"WA": {Factor: 1.05, TaxPercent: decimal.NewFromFloat(2.00), MinLiabilityLimit: 25000},
	"IL": {Factor: 1.00, TaxPercent: decimal.NewFromFloat(1.00), MinLiabilityLimit: 25000},
	"OH": {Factor: 0.95, TaxPercent: decimal.NewFromFloat(1.40), MinLiabilityLimit: 25000},
	"PA": {Factor: 1.05, TaxPercent: decimal.NewFromFloat(2.00), MinLiabilityLimit: 15000},
	"GA": {Factor: 1.15, TaxPercent: decimal.NewFromFloat(2.25), MinLiabilityLimit: 25000},
	"MI": {Factor: 1.40, TaxPercent: decimal.NewFromFloat(1.25), MinLiabilityLimit: 20000, PIPRequired: true},
}

// defaultMinLiabilityLimit applies for states absent from the table.
const defaultMinLiabilityLimit int64 = 25000

// territoryFactors maps three-digit ZIP prefixes to territory factors for
// metros that rate above or below their state level. Unknown ZIPs fall back
// to the state-level factor alone.
var territoryFactors = map[string]float64{
	"900": 1.25, // Los Angeles
	"901": 1.25,
	"941": 1.20, // San Francisco
	"100": 1.30, // Manhattan
	"112": 1.25, // Brooklyn
	"331": 1.30, // Miami
	"750": 1.10, // Dallas
	"606": 1.15, // Chicago
	"482": 1.35, // Detroit
}

// highRiskZIPs are territory prefixes that additionally trigger the
// high-risk-zip surcharge.
var highRiskZIPs = map[string]bool{
	"482": true,
	"331": true,
	"112": true,
}

func stateFor(state string) (stateParams, bool) {
	p, ok := stateTable[state]
	return p, ok
}

func minLiabilityFor(state string) int64 {
	if p, ok := stateTable[state]; ok {
		return p.MinLiabilityLimit
	}
	return defaultMinLiabilityLimit
}

func taxPercentFor(state string) decimal.Decimal {
	if p, ok := stateTable[state]; ok {
		return p.TaxPercent
	}
	return defaultTaxPercent
}

func zipPrefix(zip string) string {
	if len(zip) < 3 {
		return ""
	}
	return zip[:3]
}
