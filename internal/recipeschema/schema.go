// Package recipeschema validates recipes produced by the LLM providers. Parsing is
// lenient about types (stringified numbers, step objects, fenced JSON) and strict
// about shape: a recipe without a title, ingredients or steps is rejected.
package recipeschema

import (
	"fmt"
	"strings"
)

// Difficulty levels
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// DefaultServings is used when the model leaves servings out
const DefaultServings = 2

// Ingredient is one line of the ingredient list
type Ingredient struct {
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit"`
}

// String renders the ingredient the way it is shown in lists and prompts
func (i Ingredient) String() string {
	switch {
	case i.Quantity > 0 && i.Unit != "":
		return fmt.Sprintf("%s %s %s", formatQuantity(i.Quantity), i.Unit, i.Name)
	case i.Quantity > 0:
		return fmt.Sprintf("%s %s", formatQuantity(i.Quantity), i.Name)
	default:
		return i.Name
	}
}

// Nutrition is per serving
type Nutrition struct {
	Calories float64 `json:"calories" validate:"gte=0"`
	Protein  float64 `json:"protein" validate:"gte=0"`
	Carbs    float64 `json:"carbs" validate:"gte=0"`
	Fat      float64 `json:"fat" validate:"gte=0"`
	Fiber    float64 `json:"fiber" validate:"gte=0"`
}

// Recipe is a validated recipe
type Recipe struct {
	Title           string       `json:"title" validate:"required,max=200"`
	Description     string       `json:"description"`
	Servings        int          `json:"servings" validate:"min=1,max=100"`
	PrepTimeMinutes int          `json:"prep_time_minutes" validate:"gte=0"`
	CookTimeMinutes int          `json:"cook_time_minutes" validate:"gte=0"`
	Difficulty      string       `json:"difficulty" validate:"oneof=easy medium hard"`
	Cuisine         string       `json:"cuisine"`
	MealType        string       `json:"meal_type"`
	Ingredients     []Ingredient `json:"ingredients" validate:"min=1,dive"`
	Steps           []string     `json:"steps" validate:"min=1,dive,required"`
	Tags            []string     `json:"tags"`
	Nutrition       Nutrition    `json:"nutrition"`
}

// Example is the fixed JSON shape appended to recipe prompts
const Example = `{
  "title": "Lemon Garlic Chicken",
  "description": "One-pan chicken thighs with lemon and garlic.",
  "servings": 4,
  "prep_time_minutes": 10,
  "cook_time_minutes": 25,
  "difficulty": "easy",
  "cuisine": "Mediterranean",
  "meal_type": "dinner",
  "ingredients": [
    {"name": "chicken thighs", "quantity": 800, "unit": "g"},
    {"name": "garlic cloves", "quantity": 4, "unit": ""},
    {"name": "lemon", "quantity": 1, "unit": ""}
  ],
  "steps": [
    "Heat the oven to 200C.",
    "Season the chicken and sear skin-side down for 5 minutes.",
    "Add garlic and lemon, then roast for 20 minutes."
  ],
  "tags": ["high-protein", "one-pan"],
  "nutrition": {"calories": 420, "protein": 38, "carbs": 6, "fat": 26, "fiber": 1}
}`

// Issue is a single schema violation
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for anything that is not a valid recipe
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Field == "" {
			parts = append(parts, is.Message)
			continue
		}
		parts = append(parts, is.Field+": "+is.Message)
	}
	return "invalid recipe: " + strings.Join(parts, "; ")
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Issues: []Issue{{Field: field, Message: msg}}}
}

func formatQuantity(q float64) string {
	s := fmt.Sprintf("%.2f", q)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
