package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/internal/completion"
	"github.com/pageza/alchemorsel-mobile/backend/internal/nutrition"
)

// Measurement systems
const (
	MeasurementMetric   = "metric"
	MeasurementImperial = "imperial"
)

// Restriction kinds
const (
	RestrictionAllergy    = "allergy"
	RestrictionPreference = "preference"
)

// Profile holds everything the editors and the completion scorer work on.
// Zero values mean "not set".
type Profile struct {
	ID                  uuid.UUID   `gorm:"type:varchar(36);primarykey" json:"id"`
	DisplayName         string      `gorm:"size:100" json:"display_name"`
	AvatarURL           string      `gorm:"size:2048" json:"avatar_url"`
	Country             string      `gorm:"size:56" json:"country"`
	Currency            string      `gorm:"size:3" json:"currency"`
	DateOfBirth         *time.Time  `gorm:"type:date" json:"date_of_birth"`
	Gender              string      `gorm:"size:10" json:"gender"`
	HeightCm            float64     `json:"height_cm"`
	WeightKg            float64     `json:"weight_kg"`
	ActivityLevel       string      `gorm:"size:20" json:"activity_level"`
	Goal                string      `gorm:"size:10" json:"goal"`
	DailyCalorieTarget  int         `json:"daily_calorie_target"`
	CookingSkill        string      `gorm:"size:20" json:"cooking_skill"`
	PreferredCuisines   StringArray `gorm:"type:jsonb;not null;default:'[]'" json:"preferred_cuisines"`
	MeasurementSystem   string      `gorm:"size:10;not null;default:'metric'" json:"measurement_system"`
	OnboardingCompleted bool        `gorm:"not null;default:false" json:"onboarding_completed"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeSave(tx *gorm.DB) error {
	if p.MeasurementSystem == "" {
		p.MeasurementSystem = MeasurementMetric
	}
	if p.PreferredCuisines == nil {
		p.PreferredCuisines = StringArray{}
	}
	return nil
}

// NutritionInputs returns the calculator inputs as of now
func (p *Profile) NutritionInputs(now time.Time) nutrition.Inputs {
	in := nutrition.Inputs{
		WeightKg:      p.WeightKg,
		HeightCm:      p.HeightCm,
		Gender:        p.Gender,
		ActivityLevel: p.ActivityLevel,
		Goal:          p.Goal,
	}
	if p.DateOfBirth != nil {
		in.Age = nutrition.AgeOn(*p.DateOfBirth, now)
	}
	return in
}

// CompletionFields returns what the scorer needs; the list sizes come from the
// companion tables.
func (p *Profile) CompletionFields(restrictions, equipment int) completion.Fields {
	return completion.Fields{
		DisplayName:        p.DisplayName,
		AvatarURL:          p.AvatarURL,
		Country:            p.Country,
		Currency:           p.Currency,
		DateOfBirth:        p.DateOfBirth,
		Gender:             p.Gender,
		HeightCm:           p.HeightCm,
		WeightKg:           p.WeightKg,
		ActivityLevel:      p.ActivityLevel,
		Goal:               p.Goal,
		DailyCalorieTarget: p.DailyCalorieTarget,
		CookingSkill:       p.CookingSkill,
		PreferredCuisines:  p.PreferredCuisines,
		Restrictions:       restrictions,
		Equipment:          equipment,
	}
}

// Restriction is an allergy or dietary preference
type Restriction struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:varchar(36);not null;index" json:"profile_id"`
	Kind      string    `gorm:"size:20;not null" json:"kind"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Restriction) TableName() string {
	return "profile_restrictions"
}

func (r *Restriction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Equipment is a piece of kitchen equipment the user owns
type Equipment struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:varchar(36);not null;index" json:"profile_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Equipment) TableName() string {
	return "profile_equipment"
}

func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// FavoriteIngredient is an ingredient the user likes to cook with
type FavoriteIngredient struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:varchar(36);not null;index" json:"profile_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (FavoriteIngredient) TableName() string {
	return "favorite_ingredients"
}

func (f *FavoriteIngredient) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
