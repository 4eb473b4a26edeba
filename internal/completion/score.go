// Package completion scores how much of a profile has been filled in.
package completion

import (
	"math"
	"strings"
	"time"
)

// Fields is the subset of a profile the scorer looks at
type Fields struct {
	DisplayName string
	AvatarURL   string
	Country     string
	Currency    string

	DateOfBirth *time.Time
	Gender      string
	HeightCm    float64
	WeightKg    float64

	ActivityLevel      string
	Goal               string
	DailyCalorieTarget int

	CookingSkill      string
	PreferredCuisines []string

	Restrictions int
	Equipment    int
}

// CategoryScore is the filled/total count for one category
type CategoryScore struct {
	Name   string `json:"name"`
	Filled int    `json:"filled"`
	Total  int    `json:"total"`
}

// Result is the completion score plus its breakdown
type Result struct {
	Percent    int             `json:"percent"`
	Filled     int             `json:"filled"`
	Total      int             `json:"total"`
	Categories []CategoryScore `json:"categories"`
	Missing    []string        `json:"missing"`
}

type field struct {
	name    string
	present func(Fields) bool
}

type category struct {
	name   string
	fields []field
}

func text(get func(Fields) string) func(Fields) bool {
	return func(f Fields) bool { return strings.TrimSpace(get(f)) != "" }
}

var categories = []category{
	{name: "basic", fields: []field{
		{"display_name", text(func(f Fields) string { return f.DisplayName })},
		{"avatar_url", text(func(f Fields) string { return f.AvatarURL })},
		{"country", text(func(f Fields) string { return f.Country })},
		{"currency", text(func(f Fields) string { return f.Currency })},
	}},
	{name: "personal", fields: []field{
		{"date_of_birth", func(f Fields) bool { return f.DateOfBirth != nil && !f.DateOfBirth.IsZero() }},
		{"gender", text(func(f Fields) string { return f.Gender })},
		{"height_cm", func(f Fields) bool { return f.HeightCm > 0 }},
		{"weight_kg", func(f Fields) bool { return f.WeightKg > 0 }},
	}},
	{name: "nutrition", fields: []field{
		{"activity_level", text(func(f Fields) string { return f.ActivityLevel })},
		{"goal", text(func(f Fields) string { return f.Goal })},
		{"daily_calorie_target", func(f Fields) bool { return f.DailyCalorieTarget > 0 }},
	}},
	{name: "preferences", fields: []field{
		{"cooking_skill", text(func(f Fields) string { return f.CookingSkill })},
		{"preferred_cuisines", func(f Fields) bool { return len(f.PreferredCuisines) > 0 }},
	}},
	{name: "restrictions", fields: []field{
		{"restrictions", func(f Fields) bool { return f.Restrictions > 0 }},
	}},
	{name: "equipment", fields: []field{
		{"equipment", func(f Fields) bool { return f.Equipment > 0 }},
	}},
}

// Score counts present fields; every field weighs the same.
func Score(f Fields) Result {
	res := Result{
		Categories: make([]CategoryScore, 0, len(categories)),
		Missing:    []string{},
	}
	for _, c := range categories {
		cs := CategoryScore{Name: c.name, Total: len(c.fields)}
		for _, fd := range c.fields {
			if fd.present(f) {
				cs.Filled++
			} else {
				res.Missing = append(res.Missing, fd.name)
			}
		}
		res.Filled += cs.Filled
		res.Total += cs.Total
		res.Categories = append(res.Categories, cs)
	}
	res.Percent = int(math.Round(float64(res.Filled) * 100 / float64(res.Total)))
	return res
}
