package formulas

import "math"

// OneRMFormula selects the estimation formula for OneRM.
type OneRMFormula string

const (
	Epley   OneRMFormula = "epley"
	Brzycki OneRMFormula = "brzycki"
	Lander  OneRMFormula = "lander"
)

// OneRM estimates a one-rep max from a weight lifted for the given reps.
// reps ≤ 0 returns the weight unchanged (no extrapolation from nothing).
// Unknown formula names use Epley. A non-finite result (degenerate rep
// counts in the divisor-based formulas) is reported as ok=false.
func OneRM(weightKg float64, reps int, formula OneRMFormula) (float64, bool) {
	if reps <= 0 {
		return weightKg, true
	}

	var est float64
	switch formula {
	case Brzycki:
		est = weightKg * 36 / math.Max(1, 37-float64(reps))
	case Lander:
		est = weightKg * 100 / math.Max(1, 101.3-2.67123*float64(reps))
	default:
		est = weightKg * (1 + float64(reps)/30)
	}

	if math.IsNaN(est) || math.IsInf(est, 0) {
		return 0, false
	}
	return est, true
}
