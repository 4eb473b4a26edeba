package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/pageza/alchemorsel-mobile/backend/internal/recipeschema"
)

// StringArray is a string slice stored as a JSONB array
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil || data == nil {
		*a = StringArray{}
		return err
	}
	return json.Unmarshal(data, (*[]string)(a))
}

// IngredientList is the recipe's ingredient lines stored as a JSONB array
type IngredientList []recipeschema.Ingredient

// Value implements the driver.Valuer interface
func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]recipeschema.Ingredient(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (l *IngredientList) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil || data == nil {
		*l = IngredientList{}
		return err
	}
	return json.Unmarshal(data, (*[]recipeschema.Ingredient)(l))
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column type %T", value)
	}
}
