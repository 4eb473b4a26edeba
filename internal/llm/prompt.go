package llm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pageza/alchemorsel-mobile/backend/internal/recipeschema"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// Prompt kinds
const (
	KindChat     = "chat"
	KindGenerate = "generate"
	KindModify   = "modify"
)

// MaxChatHistory is how many earlier turns are sent with a chat message
const MaxChatHistory = 10

const chefRole = "You are a professional chef and nutritionist helping home cooks plan and cook meals."

// QuickFilters are the predefined tags the generation form offers. Custom tags are
// passed to the model as written.
var QuickFilters = map[string]string{
	"quick":        "ready in 30 minutes or less",
	"high-protein": "high in protein",
	"low-carb":     "low in carbohydrates",
	"vegetarian":   "vegetarian (no meat or fish)",
	"vegan":        "vegan (no animal products)",
	"gluten-free":  "gluten-free",
	"budget":       "inexpensive everyday ingredients",
	"one-pan":      "cooked in a single pan or pot",
	"kid-friendly": "mild flavours that children enjoy",
	"meal-prep":    "keeps well for several days",
}

// QuickFilterNames returns the predefined filters in display order
func QuickFilterNames() []string {
	names := make([]string, 0, len(QuickFilters))
	for k := range QuickFilters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Constraints are the profile-derived facts every recipe prompt carries
type Constraints struct {
	Allergies         []string
	Preferences       []string
	Equipment         []string
	Favorites         []string
	Pantry            []string
	CookingSkill      string
	MeasurementSystem string
	Language          string
	// MealCalories is the per-meal target from the nutrition goals, 0 if unknown
	MealCalories int
}

// SystemPrompt returns the role text for a prompt kind. Recipe kinds also get the
// JSON shape the reply must follow.
func SystemPrompt(kind string) string {
	if kind == KindChat {
		return chefRole + " Answer cooking, nutrition and meal-planning questions briefly and " +
			"practically. If asked for a full recipe, describe it in prose; the app has a " +
			"separate recipe generator."
	}

	var sb strings.Builder
	sb.WriteString(chefRole)
	if kind == KindModify {
		sb.WriteString(" You adjust existing recipes while keeping what the cook liked about them.")
	}
	sb.WriteString("\n\nRespond with a single JSON object only, no prose and no Markdown. ")
	sb.WriteString("Use exactly this shape:\n")
	sb.WriteString(recipeschema.Example)
	sb.WriteString("\n\nQuantities are numbers; use an empty unit for countable items. ")
	sb.WriteString("Nutrition values are per serving. difficulty is one of easy, medium, hard.")
	return sb.String()
}

// RecipePrompt turns the generation form into the user prompt
func RecipePrompt(form types.RecipeSearchForm, c Constraints) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	if p := strings.TrimSpace(form.Prompt); p != "" {
		add("Create a recipe for: %s", p)
	} else {
		add("Create a recipe.")
	}
	if form.MealType != "" {
		add("Meal type: %s", form.MealType)
	}
	if form.Cuisine != "" {
		add("Cuisine: %s", form.Cuisine)
	}
	if form.MaxTotalMinutes > 0 {
		add("Total time (prep plus cooking) must not exceed %d minutes.", form.MaxTotalMinutes)
	}
	if form.Servings > 0 {
		add("Servings: %d", form.Servings)
	}
	if form.Difficulty != "" {
		add("Difficulty: %s", form.Difficulty)
	}
	if filters := describeFilters(form.QuickFilters); len(filters) > 0 {
		add("The recipe should be: %s", strings.Join(filters, "; "))
	}
	if inc := clean(form.IncludeIngredients); len(inc) > 0 {
		add("Include these ingredients: %s", strings.Join(inc, ", "))
	}
	if exc := clean(form.ExcludeIngredients); len(exc) > 0 {
		add("Do not use: %s", strings.Join(exc, ", "))
	}

	switch {
	case form.CalorieTarget > 0:
		add("Aim for about %d calories per serving.", form.CalorieTarget)
	case c.MealCalories > 0:
		add("Aim for about %d calories per serving to fit the daily goal.", c.MealCalories)
	}

	if form.UsePantry {
		if pantry := clean(c.Pantry); len(pantry) > 0 {
			add("Prefer ingredients from the pantry: %s", strings.Join(pantry, ", "))
		}
	}
	lines = append(lines, constraintLines(c)...)
	return strings.Join(lines, "\n")
}

// ModifyPrompt embeds the current recipe and the requested change
func ModifyPrompt(recipe *recipeschema.Recipe, instruction string, c Constraints) (string, error) {
	current, err := json.MarshalIndent(recipe, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal recipe: %w", err)
	}
	lines := []string{
		"Modify this recipe.",
		"Current recipe:",
		string(current),
		"Requested change: " + strings.TrimSpace(instruction),
		"Return the complete updated recipe, not just the changes.",
	}
	if c.MealCalories > 0 {
		lines = append(lines, fmt.Sprintf("Aim for about %d calories per serving unless the change says otherwise.", c.MealCalories))
	}
	lines = append(lines, constraintLines(c)...)
	return strings.Join(lines, "\n"), nil
}

// ChatHistory converts the client's turns, keeping the most recent ones
func ChatHistory(turns []types.ChatTurn) []Message {
	if len(turns) > MaxChatHistory {
		turns = turns[len(turns)-MaxChatHistory:]
	}
	out := make([]Message, 0, len(turns))
	for _, t := range turns {
		role := RoleUser
		if t.Role == RoleAssistant {
			role = RoleAssistant
		}
		out = append(out, Message{Role: role, Content: t.Content})
	}
	return out
}

func constraintLines(c Constraints) []string {
	var lines []string
	if a := clean(c.Allergies); len(a) > 0 {
		lines = append(lines, "The recipe must not contain (allergies): "+strings.Join(a, ", "))
	}
	if p := clean(c.Preferences); len(p) > 0 {
		lines = append(lines, "Dietary preferences: "+strings.Join(p, ", "))
	}
	if e := clean(c.Equipment); len(e) > 0 {
		lines = append(lines, "Only use this kitchen equipment: "+strings.Join(e, ", "))
	}
	if f := clean(c.Favorites); len(f) > 0 {
		lines = append(lines, "Where it fits, prefer these ingredients: "+strings.Join(f, ", "))
	}
	if c.CookingSkill != "" {
		lines = append(lines, "Cooking skill: "+c.CookingSkill)
	}
	if c.MeasurementSystem != "" {
		lines = append(lines, "Use "+c.MeasurementSystem+" units.")
	}
	if c.Language != "" && c.Language != "en" {
		lines = append(lines, "Write all text values in the language with tag "+c.Language+"; keep the JSON keys in English.")
	}
	return lines
}

func describeFilters(filters []string) []string {
	out := make([]string, 0, len(filters))
	for _, f := range clean(filters) {
		if d, ok := QuickFilters[strings.ToLower(f)]; ok {
			out = append(out, d)
			continue
		}
		out = append(out, f)
	}
	return out
}

// clean trims entries and drops blanks
func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
