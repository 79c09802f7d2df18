package damage

import (
	"math"
)

// Model is a log-normal regression of structural drift on peak ground displacement:
//
//	log10(drift) = Intercept + Slope*log10(pgd)
//
// with Sigma the standard deviation of log10(drift).
type Model struct {
	Intercept float64
	Slope     float64
	Sigma     float64
}

// DefaultModel holds the calibrated regression constants.
var DefaultModel = Model{
	Intercept: -1.01,
	Slope:     0.59,
	Sigma:     0.15,
}

// MedianDrift returns the predicted median drift (m) for pgd (m), 0 when pgd <= 0.
func (m Model) MedianDrift(pgd float64) float64 {
	if pgd <= 0.0 {
		return 0.0
	}

	return math.Pow(10.0, m.Intercept+m.Slope*math.Log10(pgd))
}

// ExceedanceProbability returns the probability (percent) that the drift for pgd exceeds
// threshold.  It is 0 when pgd <= 0.
func (m Model) ExceedanceProbability(pgd, threshold float64) float64 {
	if pgd <= 0.0 {
		return 0.0
	}

	predicted := m.Intercept + m.Slope*math.Log10(pgd)
	z := (math.Log10(threshold) - predicted) / m.Sigma

	return 100.0 * 0.5 * (1.0 - math.Erf(z/math.Sqrt2))
}

// Evaluate reports whether pgd raises an alarm for damage state s of profile p.
func (m Model) Evaluate(pgd float64, p Profile, s State) bool {
	drift, limit, err := p.Thresholds(s)
	if err != nil {
		return false
	}

	return m.ExceedanceProbability(pgd, drift) >= limit
}
