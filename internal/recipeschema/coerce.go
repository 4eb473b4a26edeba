package recipeschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// number accepts JSON numbers, numeric strings ("4"), strings that start with a
// number ("15 minutes", "1 1/2") and null. Set is false for null or "".
type number struct {
	Value float64
	Set   bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = number{}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = number{Value: f, Set: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected a number, got %s", data)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*n = number{}
		return nil
	}
	v, ok := leadingNumber(s)
	if !ok {
		return fmt.Errorf("expected a number, got %q", s)
	}
	*n = number{Value: v, Set: true}
	return nil
}

func (n number) intOr(def int) int {
	if !n.Set {
		return def
	}
	return int(math.Round(n.Value))
}

func (n number) floatOr(def float64) float64 {
	if !n.Set {
		return def
	}
	return n.Value
}

var (
	mixedFraction = regexp.MustCompile(`^(\d+)\s+(\d+)\s*/\s*(\d+)`)
	fraction      = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)`)
	decimal       = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)
)

// leadingNumber parses the number a string starts with
func leadingNumber(s string) (float64, bool) {
	if m := mixedFraction.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.ParseFloat(m[1], 64)
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den == 0 {
			return 0, false
		}
		return whole + num/den, true
	}
	if m := fraction.FindStringSubmatch(s); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den == 0 {
			return 0, false
		}
		return num / den, true
	}
	if m := decimal.FindString(s); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		return v, err == nil
	}
	return 0, false
}

// text accepts strings, numbers and null
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = text(strings.TrimSpace(s))
		return nil
	}
	var f json.Number
	if err := json.Unmarshal(data, &f); err == nil {
		*t = text(f.String())
		return nil
	}
	return fmt.Errorf("expected a string, got %s", data)
}

// textList accepts a JSON list or one comma-separated string ("quick, easy")
type textList []text

func (l *textList) UnmarshalJSON(data []byte) error {
	var items []text
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}
	var one text
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("expected a list of strings, got %s", data)
	}
	*l = nil
	for _, part := range strings.Split(string(one), ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, text(part))
		}
	}
	return nil
}

// step accepts "Do this." or {"step": 1, "instruction": "Do this."}
type step string

func (s *step) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = step(strings.TrimSpace(str))
		return nil
	}
	var obj struct {
		Instruction text `json:"instruction"`
		Text        text `json:"text"`
		Description text `json:"description"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected a step string or object, got %s", data)
	}
	for _, v := range []text{obj.Instruction, obj.Text, obj.Description} {
		if v != "" {
			*s = step(v)
			return nil
		}
	}
	*s = ""
	return nil
}

// ingredient accepts {"name","quantity"|"amount","unit"} or a plain string
type ingredient struct {
	Name     text
	Quantity number
	Unit     text
}

func (i *ingredient) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*i = ingredient{Name: text(strings.TrimSpace(str))}
		return nil
	}
	var obj struct {
		Name     text   `json:"name"`
		Item     text   `json:"item"`
		Quantity number `json:"quantity"`
		Amount   number `json:"amount"`
		Unit     text   `json:"unit"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("ingredient: %w", err)
	}
	i.Name = obj.Name
	if i.Name == "" {
		i.Name = obj.Item
	}
	i.Quantity = obj.Quantity
	if !i.Quantity.Set {
		i.Quantity = obj.Amount
	}
	i.Unit = obj.Unit
	return nil
}

type rawNutrition struct {
	Calories number `json:"calories"`
	Protein  number `json:"protein"`
	Carbs    number `json:"carbs"`
	Fat      number `json:"fat"`
	Fiber    number `json:"fiber"`
}

type rawRecipe struct {
	Title           text         `json:"title"`
	Description     text         `json:"description"`
	Servings        number       `json:"servings"`
	PrepTimeMinutes number       `json:"prep_time_minutes"`
	CookTimeMinutes number       `json:"cook_time_minutes"`
	Difficulty      text         `json:"difficulty"`
	Cuisine         text         `json:"cuisine"`
	MealType        text         `json:"meal_type"`
	Ingredients     []ingredient `json:"ingredients"`
	Steps           []step       `json:"steps"`
	Tags            textList     `json:"tags"`
	Nutrition       rawNutrition `json:"nutrition"`
}

// normalize applies defaults and canonical casing
func (r rawRecipe) normalize() *Recipe {
	rec := &Recipe{
		Title:           string(r.Title),
		Description:     string(r.Description),
		Servings:        r.Servings.intOr(DefaultServings),
		PrepTimeMinutes: r.PrepTimeMinutes.intOr(0),
		CookTimeMinutes: r.CookTimeMinutes.intOr(0),
		Difficulty:      strings.ToLower(string(r.Difficulty)),
		Cuisine:         string(r.Cuisine),
		MealType:        strings.ToLower(string(r.MealType)),
		Ingredients:     make([]Ingredient, 0, len(r.Ingredients)),
		Steps:           make([]string, 0, len(r.Steps)),
		Tags:            []string{},
		Nutrition: Nutrition{
			Calories: r.Nutrition.Calories.floatOr(0),
			Protein:  r.Nutrition.Protein.floatOr(0),
			Carbs:    r.Nutrition.Carbs.floatOr(0),
			Fat:      r.Nutrition.Fat.floatOr(0),
			Fiber:    r.Nutrition.Fiber.floatOr(0),
		},
	}
	if rec.Difficulty == "" {
		rec.Difficulty = DifficultyMedium
	}
	for _, in := range r.Ingredients {
		rec.Ingredients = append(rec.Ingredients, Ingredient{
			Name:     string(in.Name),
			Quantity: in.Quantity.floatOr(0),
			Unit:     string(in.Unit),
		})
	}
	for _, s := range r.Steps {
		rec.Steps = append(rec.Steps, string(s))
	}
	seen := make(map[string]bool, len(r.Tags))
	for _, t := range r.Tags {
		tag := strings.ToLower(string(t))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		rec.Tags = append(rec.Tags, tag)
	}
	return rec
}
