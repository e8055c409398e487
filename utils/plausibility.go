package utils

import (
	"fmt"
	"math"

	"macrolog/models"
)

const (
	// MaxCalorieDeviation is the tolerated relative gap between stated
	// calories and the 4/4/9 reconstruction from macros.
	MaxCalorieDeviation  = 0.30
	MaxPlausibleCalories = 1000.0
	MaxPlausibleMacroG   = 100.0
)

// PlausibilityResult explains why a nutrient record was rejected.
type PlausibilityResult struct {
	Valid         bool     `json:"valid"`
	Reconstructed float64  `json:"reconstructed_calories"`
	Deviation     float64  `json:"deviation"`
	Reasons       []string `json:"reasons,omitempty"`
}

// CheckPlausibility rejects records whose macros don't add up to their calories
// or whose values exceed the per-item ceilings.
func CheckPlausibility(n models.Nutrients) PlausibilityResult {
	res := PlausibilityResult{Valid: true}
	reject := func(format string, args ...any) {
		res.Valid = false
		res.Reasons = append(res.Reasons, fmt.Sprintf(format, args...))
	}

	macros := []struct {
		name string
		v    float64
	}{{"protein", n.Protein}, {"carbs", n.Carbs}, {"fats", n.Fats}, {"fiber", n.Fiber}}

	if v := n.Calories; v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		reject("calories is not a non-negative number")
	}
	for _, m := range macros {
		if v := m.v; v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			reject("%s is not a non-negative number", m.name)
		}
	}
	if !res.Valid {
		return res
	}

	if n.Calories > MaxPlausibleCalories {
		reject("calories %.0f exceed %.0f", n.Calories, MaxPlausibleCalories)
	}
	for _, m := range macros {
		if m.v > MaxPlausibleMacroG {
			reject("%s %.1fg exceeds %.0fg", m.name, m.v, MaxPlausibleMacroG)
		}
	}

	res.Reconstructed = EnergyFromMacros(n.Carbs, n.Protein, n.Fats)
	switch {
	case n.Calories == 0 && res.Reconstructed == 0:
		res.Deviation = 0
	case n.Calories == 0:
		res.Deviation = math.Inf(1)
	default:
		res.Deviation = math.Abs(res.Reconstructed-n.Calories) / n.Calories
	}
	if res.Deviation > MaxCalorieDeviation {
		reject("macros reconstruct to %.0f kcal vs %.0f stated", res.Reconstructed, n.Calories)
	}
	return res
}

func IsPlausible(n models.Nutrients) bool { return CheckPlausibility(n).Valid }

// EnergyFromMacros uses Atwater factors (4/4/9).
func EnergyFromMacros(carbG, protG, fatG float64) float64 {
	return 4*carbG + 4*protG + 9*fatG
}

func Round1(f float64) float64 { return math.Round(f*10) / 10 }

// RoundNutrients rounds calories to whole kcal and macros to one decimal.
func RoundNutrients(n models.Nutrients) models.Nutrients {
	return models.Nutrients{
		Calories: math.Round(n.Calories),
		Protein:  Round1(n.Protein),
		Carbs:    Round1(n.Carbs),
		Fats:     Round1(n.Fats),
		Fiber:    Round1(n.Fiber),
	}
}
