package recipeschema

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ExtractJSON strips Markdown fences and surrounding prose, returning the
// outermost JSON object in s.
func ExtractJSON(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", invalid("", "response does not contain a JSON object")
	}
	s = s[start : end+1]
	if !gjson.Valid(s) {
		return "", invalid("", "response is not valid JSON")
	}
	return s, nil
}

// Parse turns raw model output into a validated Recipe. A top-level "recipe"
// envelope is unwrapped. Every failure is a *ValidationError.
func Parse(raw string) (*Recipe, error) {
	body, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	if env := gjson.Get(body, "recipe"); env.IsObject() {
		body = env.Raw
	}

	var rr rawRecipe
	if err := json.Unmarshal([]byte(body), &rr); err != nil {
		return nil, invalid(fieldOf(err), err.Error())
	}

	rec := rr.normalize()
	if err := Validate(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate runs the declarative rules on an already decoded recipe. Names,
// steps and tags are trimmed first so blank values count as missing.
func Validate(rec *Recipe) error {
	rec.Title = strings.TrimSpace(rec.Title)
	for i := range rec.Ingredients {
		rec.Ingredients[i].Name = strings.TrimSpace(rec.Ingredients[i].Name)
		rec.Ingredients[i].Unit = strings.TrimSpace(rec.Ingredients[i].Unit)
	}
	for i := range rec.Steps {
		rec.Steps[i] = strings.TrimSpace(rec.Steps[i])
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	err := validate.Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalid("", err.Error())
	}
	out := &ValidationError{Issues: make([]Issue, 0, len(verrs))}
	for _, fe := range verrs {
		out.Issues = append(out.Issues, Issue{
			Field:   strings.TrimPrefix(fe.Namespace(), "Recipe."),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must not be negative"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func fieldOf(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Field
	}
	return ""
}
