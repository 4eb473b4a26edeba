// Package nutrition holds the daily goal calculator (Mifflin-St Jeor) and the
// unit conversions used by the profile editors.
package nutrition

import (
	"math"
	"strings"
	"time"
)

// Gender values accepted by the calculator
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Activity levels
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// Goals
const (
	GoalLose     = "lose"
	GoalMaintain = "maintain"
	GoalGain     = "gain"
)

// MinimumCalories is the floor applied after the goal adjustment
const MinimumCalories = 1200

var genderOffset = map[string]float64{
	GenderMale:   5,
	GenderFemale: -161,
	GenderOther:  -78,
}

var activityMultiplier = map[string]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

var goalAdjustment = map[string]float64{
	GoalLose:     -500,
	GoalMaintain: 0,
	GoalGain:     300,
}

// Share of calories per macro and the energy density used to turn it into grams.
const (
	proteinRatio = 0.30
	carbsRatio   = 0.40
	fatRatio     = 0.30

	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// Inputs are the profile attributes the calculator needs
type Inputs struct {
	WeightKg      float64 `json:"weight_kg"`
	HeightCm      float64 `json:"height_cm"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

// Macros is a calorie target with its macro split in grams
type Macros struct {
	Calories int `json:"calories"`
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

// Goals is the calculator output
type Goals struct {
	BMR  int `json:"bmr"`
	TDEE int `json:"tdee"`
	Macros
}

// IsValidGender reports whether the calculator knows the value
func IsValidGender(v string) bool { _, ok := genderOffset[normalize(v)]; return ok }

// IsValidActivityLevel reports whether the calculator knows the value
func IsValidActivityLevel(v string) bool { _, ok := activityMultiplier[normalize(v)]; return ok }

// IsValidGoal reports whether the calculator knows the value
func IsValidGoal(v string) bool { _, ok := goalAdjustment[normalize(v)]; return ok }

// CalculateGoals returns nil when any input is missing or unknown.
// Intermediate values stay unrounded; each reported integer is rounded once.
func CalculateGoals(in Inputs) *Goals {
	offset, okGender := genderOffset[normalize(in.Gender)]
	multiplier, okActivity := activityMultiplier[normalize(in.ActivityLevel)]
	adjustment, okGoal := goalAdjustment[normalize(in.Goal)]
	if in.WeightKg <= 0 || in.HeightCm <= 0 || in.Age <= 0 || !okGender || !okActivity || !okGoal {
		return nil
	}

	bmr := 10*in.WeightKg + 6.25*in.HeightCm - 5*float64(in.Age) + offset
	tdee := bmr * multiplier

	calories := int(math.Round(tdee + adjustment))
	if calories < MinimumCalories {
		calories = MinimumCalories
	}

	return &Goals{
		BMR:    int(math.Round(bmr)),
		TDEE:   int(math.Round(tdee)),
		Macros: SplitCalories(calories),
	}
}

// PerMealTargets divides the daily target evenly across meals (3 when meals < 1)
func PerMealTargets(g Goals, meals int) Macros {
	if meals < 1 {
		meals = 3
	}
	n := float64(meals)
	return Macros{
		Calories: int(math.Round(float64(g.Calories) / n)),
		ProteinG: int(math.Round(float64(g.ProteinG) / n)),
		CarbsG:   int(math.Round(float64(g.CarbsG) / n)),
		FatG:     int(math.Round(float64(g.FatG) / n)),
	}
}

// AgeOn returns whole years between dob and now, never negative
func AgeOn(dob, now time.Time) int {
	if dob.IsZero() {
		return 0
	}
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// SplitCalories divides a calorie figure into the 30/40/30 macro split
func SplitCalories(calories int) Macros {
	c := float64(calories)
	return Macros{
		Calories: calories,
		ProteinG: int(math.Round(c * proteinRatio / kcalPerGramProtein)),
		CarbsG:   int(math.Round(c * carbsRatio / kcalPerGramCarbs)),
		FatG:     int(math.Round(c * fatRatio / kcalPerGramFat)),
	}
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
