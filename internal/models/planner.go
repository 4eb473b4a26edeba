package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal slots of the planner
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// MealTypes lists the planner slots in day order
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

// PantryItem is something the user already has at home. ExpiresOn is YYYY-MM-DD.
type PantryItem struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:varchar(36);not null;index" json:"profile_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `gorm:"size:30" json:"unit"`
	Category  string    `gorm:"size:50" json:"category"`
	ExpiresOn *string   `gorm:"size:10" json:"expires_on"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PantryItem) TableName() string {
	return "pantry_items"
}

func (p *PantryItem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ShoppingListItem struct {
	ID        uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	ProfileID uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"profile_id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Quantity  float64    `json:"quantity"`
	Unit      string     `gorm:"size:30" json:"unit"`
	Category  string     `gorm:"size:50" json:"category"`
	Checked   bool       `gorm:"not null;default:false" json:"checked"`
	RecipeID  *uuid.UUID `gorm:"type:varchar(36)" json:"recipe_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (ShoppingListItem) TableName() string {
	return "shopping_list_items"
}

func (s *ShoppingListItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// MealPlanEntry puts a recipe in one meal slot of one day. PlannedOn is YYYY-MM-DD.
type MealPlanEntry struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_meal_plan_slot" json:"profile_id"`
	PlannedOn string    `gorm:"size:10;not null;uniqueIndex:idx_meal_plan_slot" json:"planned_on"`
	MealType  string    `gorm:"size:20;not null;uniqueIndex:idx_meal_plan_slot" json:"meal_type"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null" json:"recipe_id"`
	Recipe    *Recipe   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"recipe,omitempty"`
	Servings  int       `gorm:"not null;default:1" json:"servings"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MealPlanEntry) TableName() string {
	return "meal_plan_entries"
}

func (m *MealPlanEntry) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// AllModels lists every table in creation order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&Restriction{},
		&Equipment{},
		&FavoriteIngredient{},
		&Recipe{},
		&PantryItem{},
		&ShoppingListItem{},
		&MealPlanEntry{},
	}
}
