package rating

import (
	"time"

	"lanewise/pkg/domain"
)

// The four factor resolvers. Each is a pure function from a snapshot to a
// list of positive multipliers. Factors multiply; they never add. A factor is
// a relative risk ratio, and multiplication preserves proportionality when
// several risk dimensions co-occur.

// modelClassFactors rates known make/model combinations. Unknown vehicles
// rate neutral with the Default flag set rather than failing the quote.
var modelClassFactors = map[string]float64{
	"toyota/camry":       0.95,
	"toyota/corolla":     0.92,
	"honda/accord":       0.95,
	"honda/civic":        1.00,
	"ford/f-150":         1.00,
	"ford/mustang":       1.25,
	"chevrolet/corvette": 1.35,
	"chevrolet/camaro":   1.25,
	"subaru/outback":     0.90,
	"subaru/wrx":         1.20,
	"bmw/m3":             1.35,
	"dodge/charger":      1.30,
	"tesla/model 3":      1.10,
	"nissan/gt-r":        1.40,
}

// highPerformanceModels trigger the high-performance-vehicle surcharge on
// top of the model class factor.
var highPerformanceModels = map[string]bool{
	"chevrolet/corvette": true,
	"bmw/m3":             true,
	"nissan/gt-r":        true,
	"dodge/charger":      true,
	"ford/mustang":       true,
}

// usageFactors adjusts for how the vehicle is driven.
var usageFactors = map[domain.UsageType]float64{
	domain.UsageCommute:   1.00,
	domain.UsagePleasure:  0.90,
	domain.UsageBusiness:  1.25,
	domain.UsageRideshare: 1.40,
}

// resolveVehicleFactors rates the primary vehicle: age tier, usage, model
// class, and value tier when a valuation is available.
func resolveVehicleFactors(v VehicleInput, now time.Time) []Factor {
	factors := make([]Factor, 0, 4)

	vehicleAge := now.Year() - v.Year
	var ageFactor float64
	switch {
	case vehicleAge <= 1:
		ageFactor = 1.15
	case vehicleAge <= 5:
		ageFactor = 1.00
	case vehicleAge <= 10:
		ageFactor = 0.90
	default:
		ageFactor = 0.85
	}
	factors = append(factors, Factor{Name: "vehicle.age", Value: ageFactor})

	usage, ok := usageFactors[v.Usage]
	if !ok {
		usage = 1.00
	}
	factors = append(factors, Factor{Name: "vehicle.usage", Value: usage, Default: !ok})

	if class, ok := modelClassFactors[modelKey(v)]; ok {
		factors = append(factors, Factor{Name: "vehicle.model_class", Value: class})
	} else {
		factors = append(factors, Factor{Name: "vehicle.model_class", Value: 1.00, Default: true})
	}

	if v.Value > 0 {
		var valueFactor float64
		switch {
		case v.Value < 10000:
			valueFactor = 0.90
		case v.Value < 30000:
			valueFactor = 1.00
		case v.Value < 60000:
			valueFactor = 1.15
		default:
			valueFactor = 1.30
		}
		factors = append(factors, Factor{Name: "vehicle.value", Value: valueFactor})
	} else {
		// Valuation lookup unavailable: rate neutral, never block the quote.
		factors = append(factors, Factor{Name: "vehicle.value", Value: 1.00, Default: true})
	}

	return factors
}

// resolveDriverFactors rates age band, experience, and record. The age bands
// start at the legal minimum driving age of 16; younger drivers are rejected
// during validation before resolvers run. Record sub-factors combine by
// multiplication so a violation cannot cancel an accident.
func resolveDriverFactors(d DriverInput, now time.Time) []Factor {
	age := d.Age(now)
	var ageFactor float64
	switch {
	case age < 20:
		ageFactor = 1.80
	case age < 25:
		ageFactor = 1.50
	case age < 30:
		ageFactor = 1.20
	case age < 65:
		ageFactor = 1.00
	case age < 75:
		ageFactor = 1.10
	default:
		ageFactor = 1.30
	}

	var expFactor float64
	switch {
	case d.YearsLicensed < 2:
		expFactor = 1.25
	case d.YearsLicensed < 5:
		expFactor = 1.10
	default:
		expFactor = 1.00
	}

	violations := d.Violations
	if violations > 5 {
		violations = 5
	}
	accidents := d.AtFaultAccidents
	if accidents > 4 {
		accidents = 4
	}

	return []Factor{
		{Name: "driver.age", Value: ageFactor},
		{Name: "driver.experience", Value: expFactor},
		{Name: "driver.violations", Value: 1.0 + 0.10*float64(violations)},
		{Name: "driver.accidents", Value: 1.0 + 0.20*float64(accidents)},
	}
}

// resolveLocationFactors rates the garaging state plus a territory override
// when the ZIP prefix is known. An unknown ZIP defaults to the state-level
// factor alone; an unknown state rates neutral with the Default flag set.
func resolveLocationFactors(loc LocationInput) []Factor {
	factors := make([]Factor, 0, 2)

	if params, ok := stateFor(loc.State); ok {
		factors = append(factors, Factor{Name: "location.state", Value: params.Factor})
	} else {
		factors = append(factors, Factor{Name: "location.state", Value: 1.00, Default: true})
	}

	if territory, ok := territoryFactors[zipPrefix(loc.ZIP)]; ok {
		factors = append(factors, Factor{Name: "location.territory", Value: territory})
	} else {
		factors = append(factors, Factor{Name: "location.territory", Value: 1.00, Default: true})
	}

	return factors
}

// coverageTypeFactors is the base factor each selected coverage contributes.
// Liability is the rating base and contributes through the limit tier instead.
var coverageTypeFactors = map[domain.CoverageType]float64{
	domain.CoverageCollision:     1.20,
	domain.CoverageComprehensive: 1.10,
	domain.CoverageUninsured:     1.05,
	domain.CoveragePIP:           1.05,
	domain.CoverageRental:        1.02,
	domain.CoverageRoadside:      1.01,
}

// resolveCoverageFactors rates the liability limit tier plus one factor per
// additional selected coverage. Only collision and comprehensive carry a
// deductible sub-factor; every other type uses 1.0 for that dimension.
func resolveCoverageFactors(coverages []CoverageSelection) []Factor {
	factors := make([]Factor, 0, len(coverages)+1)

	for _, c := range coverages {
		if !c.Selected {
			continue
		}
		if c.Type == domain.CoverageLiability {
			factors = append(factors, Factor{Name: "coverage.liability_limit", Value: liabilityLimitFactor(c.Limit)})
			continue
		}
		base := coverageTypeFactors[c.Type]
		if base == 0 {
			base = 1.00
		}
		if c.Type.RequiresDeductible() {
			base *= deductibleFactor(c.Deductible)
		}
		factors = append(factors, Factor{Name: "coverage." + string(c.Type), Value: base})
	}

	return factors
}

func liabilityLimitFactor(limit int64) float64 {
	switch {
	case limit >= 250000:
		return 1.40
	case limit >= 100000:
		return 1.25
	case limit >= 50000:
		return 1.10
	default:
		return 1.00
	}
}

func deductibleFactor(deductible int64) float64 {
	switch {
	case deductible <= 250:
		return 1.15
	case deductible <= 500:
		return 1.00
	case deductible <= 1000:
		return 0.90
	default:
		return 0.85
	}
}

func modelKey(v VehicleInput) string {
	return normalize(v.Make) + "/" + normalize(v.Model)
}

func normalize(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
