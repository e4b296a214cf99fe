package formulas

import (
	"math"

	"github.com/meltforce/liftlog/internal/models"
)

// BodyFatNavy estimates body fat percentage from tape measurements using
// the US Navy circumference method. All measurements are in centimeters;
// hipCm is only used for the female formula.
//
// Returns ok=false when the inputs are outside the formula's log domain
// (waist ≤ neck for men, waist+hip ≤ neck for women) or when the result
// is not finite. Callers must treat that as "not computable", not zero.
// Computable results are clamped to [0, 50].
func BodyFatNavy(gender models.Gender, heightCm, neckCm, waistCm, hipCm float64) (float64, bool) {
	if heightCm <= 0 {
		return 0, false
	}

	var bf float64
	switch gender {
	case models.GenderFemale:
		if waistCm+hipCm-neckCm <= 0 {
			return 0, false
		}
		bf = 495/(1.29579-0.35004*math.Log10(waistCm+hipCm-neckCm)+0.22100*math.Log10(heightCm)) - 450
	default:
		if waistCm-neckCm <= 0 {
			return 0, false
		}
		bf = 495/(1.0324-0.19077*math.Log10(waistCm-neckCm)+0.15456*math.Log10(heightCm)) - 450
	}

	if math.IsNaN(bf) || math.IsInf(bf, 0) {
		return 0, false
	}
	return clamp(bf, 0, 50), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
