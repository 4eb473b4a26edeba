package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/internal/recipeschema"
)

// Recipe sources
const (
	SourceAI     = "ai"
	SourceManual = "manual"
)

type Recipe struct {
	ID              uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	ProfileID       uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"profile_id"`
	Title           string          `gorm:"size:200;not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	Servings        int             `gorm:"not null;default:2" json:"servings"`
	PrepTimeMinutes int             `json:"prep_time_minutes"`
	CookTimeMinutes int             `json:"cook_time_minutes"`
	Difficulty      string          `gorm:"size:10;not null;default:'medium'" json:"difficulty"`
	Cuisine         string          `gorm:"size:50" json:"cuisine"`
	MealType        string          `gorm:"size:20" json:"meal_type"`
	Ingredients     IngredientList  `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Steps           StringArray     `gorm:"type:jsonb;not null;default:'[]'" json:"steps"`
	Tags            StringArray     `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	Calories        float64         `json:"calories"`
	ProteinG        float64         `json:"protein_g"`
	CarbsG          float64         `json:"carbs_g"`
	FatG            float64         `json:"fat_g"`
	FiberG          float64         `json:"fiber_g"`
	ImagePath       string          `gorm:"size:255" json:"-"`
	ImageURL        string          `gorm:"-" json:"image_url,omitempty"`
	IsFavorite      bool            `gorm:"not null;default:false" json:"is_favorite"`
	Source          string          `gorm:"size:10;not null;default:'manual'" json:"source"`
	Provider        string          `gorm:"size:20" json:"provider,omitempty"`
	Embedding       pgvector.Vector `gorm:"type:vector(256)" json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the JSON columns non-null and the embedding in step with the content
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	if r.Ingredients == nil {
		r.Ingredients = IngredientList{}
	}
	if r.Steps == nil {
		r.Steps = StringArray{}
	}
	if r.Tags == nil {
		r.Tags = StringArray{}
	}
	r.Embedding = pgvector.NewVector(RecipeEmbedding(r))
	return nil
}

// TotalMinutes is prep plus cooking time
func (r *Recipe) TotalMinutes() int {
	return r.PrepTimeMinutes + r.CookTimeMinutes
}

// Schema returns the recipe in its validated wire shape
func (r *Recipe) Schema() *recipeschema.Recipe {
	return &recipeschema.Recipe{
		Title:           r.Title,
		Description:     r.Description,
		Servings:        r.Servings,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Difficulty:      r.Difficulty,
		Cuisine:         r.Cuisine,
		MealType:        r.MealType,
		Ingredients:     append([]recipeschema.Ingredient(nil), r.Ingredients...),
		Steps:           append([]string(nil), r.Steps...),
		Tags:            append([]string(nil), r.Tags...),
		Nutrition: recipeschema.Nutrition{
			Calories: r.Calories,
			Protein:  r.ProteinG,
			Carbs:    r.CarbsG,
			Fat:      r.FatG,
			Fiber:    r.FiberG,
		},
	}
}

// Apply copies a validated recipe onto the row, leaving ownership, image and
// favorite state alone
func (r *Recipe) Apply(s *recipeschema.Recipe) {
	r.Title = s.Title
	r.Description = s.Description
	r.Servings = s.Servings
	r.PrepTimeMinutes = s.PrepTimeMinutes
	r.CookTimeMinutes = s.CookTimeMinutes
	r.Difficulty = s.Difficulty
	r.Cuisine = s.Cuisine
	r.MealType = strings.ToLower(s.MealType)
	r.Ingredients = IngredientList(s.Ingredients)
	r.Steps = StringArray(s.Steps)
	r.Tags = StringArray(s.Tags)
	r.Calories = s.Nutrition.Calories
	r.ProteinG = s.Nutrition.Protein
	r.CarbsG = s.Nutrition.Carbs
	r.FatG = s.Nutrition.Fat
	r.FiberG = s.Nutrition.Fiber
}
