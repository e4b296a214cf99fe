// Package formulas holds the pure nutrition and strength computations:
// BMR, TDEE, calorie goals, macro splits, Navy-method body fat, and
// one-rep-max estimation. Everything here is stateless; values that a
// formula cannot produce from its inputs are reported with an ok=false
// return, never as a silent zero.
package formulas

import (
	"github.com/meltforce/liftlog/internal/models"
)

// activityMultipliers maps activity level names to their TDEE multiplier.
// Single source of truth — also used to validate profile updates.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// goalMultipliers maps goal names to their calorie-goal multiplier.
var goalMultipliers = map[string]float64{
	"cut":      0.8,
	"bulk":     1.1,
	"maintain": 1.0,
}

// ActivityLevels returns the recognized activity level names.
func ActivityLevels() []string {
	return []string{"sedentary", "light", "moderate", "active", "very_active"}
}

// BMRMifflinStJeor computes basal metabolic rate via Mifflin-St Jeor.
func BMRMifflinStJeor(weightKg, heightCm float64, age int, gender models.Gender) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == models.GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// BMRKatchMcArdle computes basal metabolic rate from lean body mass.
// Used when body fat percentage is known (e.g. from the Navy method).
// bodyFatPercent is expected in [0,100].
func BMRKatchMcArdle(weightKg, bodyFatPercent float64) float64 {
	lbm := weightKg * (1 - bodyFatPercent/100)
	return 370 + 21.6*lbm
}

// TDEE multiplies a BMR by the activity level's multiplier.
// Unrecognized levels fall back to the moderate multiplier (1.55).
func TDEE(bmr float64, activityLevel string) float64 {
	mult, ok := activityMultipliers[activityLevel]
	if !ok {
		mult = 1.55
	}
	return bmr * mult
}

// CalorieGoal scales TDEE by the goal multiplier. Unrecognized goals
// are treated as maintain.
func CalorieGoal(tdee float64, goal string) float64 {
	mult, ok := goalMultipliers[goal]
	if !ok {
		mult = 1.0
	}
	return tdee * mult
}

// MacroSplit is a daily macronutrient target in grams.
type MacroSplit struct {
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
}

// Macros splits a calorie goal into protein/fat/carb gram targets:
// protein at 2.0 g/kg bodyweight, fat at 25% of calories, carbs from
// the remainder. When protein and fat alone exceed the goal, carbs
// floor at zero rather than going negative.
func Macros(calorieGoal, weightKg float64) MacroSplit {
	protein := 2.0 * weightKg
	fat := calorieGoal * 0.25 / 9
	remaining := calorieGoal - protein*4 - fat*9
	carbs := remaining / 4
	if carbs < 0 {
		carbs = 0
	}
	return MacroSplit{ProteinG: protein, FatG: fat, CarbsG: carbs}
}
