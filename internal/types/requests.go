package types

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateProfileRequest is a partial update; nil fields are left unchanged
type UpdateProfileRequest struct {
	DisplayName        *string   `json:"display_name,omitempty" binding:"omitempty,max=100"`
	AvatarURL          *string   `json:"avatar_url,omitempty" binding:"omitempty,max=2048"`
	Country            *string   `json:"country,omitempty" binding:"omitempty,max=56"`
	Currency           *string   `json:"currency,omitempty" binding:"omitempty,max=3"`
	DateOfBirth        *string   `json:"date_of_birth,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Gender             *string   `json:"gender,omitempty" binding:"omitempty,oneof=male female other"`
	HeightCm           *float64  `json:"height_cm,omitempty" binding:"omitempty,gte=0,lte=300"`
	WeightKg           *float64  `json:"weight_kg,omitempty" binding:"omitempty,gte=0,lte=500"`
	ActivityLevel      *string   `json:"activity_level,omitempty" binding:"omitempty,oneof=sedentary light moderate active very_active"`
	Goal               *string   `json:"goal,omitempty" binding:"omitempty,oneof=lose maintain gain"`
	DailyCalorieTarget *int      `json:"daily_calorie_target,omitempty" binding:"omitempty,gte=0,lte=10000"`
	CookingSkill       *string   `json:"cooking_skill,omitempty" binding:"omitempty,oneof=beginner intermediate advanced"`
	PreferredCuisines  *[]string `json:"preferred_cuisines,omitempty" binding:"omitempty,max=20,dive,max=50"`
	MeasurementSystem  *string   `json:"measurement_system,omitempty" binding:"omitempty,oneof=metric imperial"`
}

// RestrictionInput is one allergy or dietary preference
type RestrictionInput struct {
	Kind string `json:"kind" binding:"required,oneof=allergy preference"`
	Name string `json:"name" binding:"required,max=100"`
}

// ReplaceRestrictionsRequest replaces the whole restriction list; [] clears it
type ReplaceRestrictionsRequest struct {
	Restrictions []RestrictionInput `json:"restrictions" binding:"required,max=100,dive"`
}

// ReplaceNamesRequest replaces an equipment or favorite-ingredient list; [] clears it
type ReplaceNamesRequest struct {
	Names []string `json:"names" binding:"required,max=100,dive,max=100"`
}

// NutritionGoalsRequest runs the calculator on explicit inputs
type NutritionGoalsRequest struct {
	WeightKg      float64 `json:"weight_kg" binding:"required,gt=0,lte=500"`
	HeightCm      float64 `json:"height_cm" binding:"required,gt=0,lte=300"`
	Age           int     `json:"age" binding:"required,gt=0,lte=120"`
	Gender        string  `json:"gender" binding:"required,oneof=male female other"`
	ActivityLevel string  `json:"activity_level" binding:"required,oneof=sedentary light moderate active very_active"`
	Goal          string  `json:"goal" binding:"required,oneof=lose maintain gain"`
	MealsPerDay   int     `json:"meals_per_day" binding:"omitempty,gte=1,lte=8"`
}

// RecipeSearchForm holds the generation parameters the client collects
type RecipeSearchForm struct {
	Prompt             string   `json:"prompt" binding:"max=1000"`
	MealType           string   `json:"meal_type" binding:"omitempty,oneof=breakfast lunch dinner snack dessert"`
	Cuisine            string   `json:"cuisine" binding:"max=50"`
	MaxTotalMinutes    int      `json:"max_total_minutes" binding:"gte=0,lte=1440"`
	Servings           int      `json:"servings" binding:"gte=0,lte=100"`
	Difficulty         string   `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	QuickFilters       []string `json:"quick_filters" binding:"max=20,dive,max=50"`
	UsePantry          bool     `json:"use_pantry"`
	CalorieTarget      int      `json:"calorie_target" binding:"gte=0,lte=5000"`
	IncludeIngredients []string `json:"include_ingredients" binding:"max=30,dive,max=100"`
	ExcludeIngredients []string `json:"exclude_ingredients" binding:"max=30,dive,max=100"`
	Provider           string   `json:"provider,omitempty" binding:"omitempty,oneof=deepseek gemini"`
}

// ChatTurn is one earlier message of a chat session
type ChatTurn struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required,max=4000"`
}

// ChatRequest is a message for the home-screen assistant
type ChatRequest struct {
	Message  string     `json:"message" binding:"required,max=4000"`
	History  []ChatTurn `json:"history" binding:"max=50,dive"`
	Provider string     `json:"provider,omitempty" binding:"omitempty,oneof=deepseek gemini"`
}

// ChatResponse is the assistant's reply
type ChatResponse struct {
	Reply    string `json:"reply"`
	Provider string `json:"provider"`
}

// ModifyRecipeRequest asks the model to change an existing recipe
type ModifyRecipeRequest struct {
	Instruction string `json:"instruction" binding:"required,max=2000"`
	Provider    string `json:"provider,omitempty" binding:"omitempty,oneof=deepseek gemini"`
}

// PantryItemRequest creates or updates a pantry item
type PantryItemRequest struct {
	Name      string  `json:"name" binding:"required,max=100"`
	Quantity  float64 `json:"quantity" binding:"gte=0"`
	Unit      string  `json:"unit" binding:"max=30"`
	Category  string  `json:"category" binding:"max=50"`
	ExpiresOn string  `json:"expires_on" binding:"omitempty,datetime=2006-01-02"`
}

// ShoppingItemRequest creates or updates a shopping list item
type ShoppingItemRequest struct {
	Name     string  `json:"name" binding:"required,max=100"`
	Quantity float64 `json:"quantity" binding:"gte=0"`
	Unit     string  `json:"unit" binding:"max=30"`
	Category string  `json:"category" binding:"max=50"`
	Checked  *bool   `json:"checked,omitempty"`
}

// MealPlanEntryRequest places a recipe in a day's meal slot
type MealPlanEntryRequest struct {
	Date     string    `json:"date" binding:"required,datetime=2006-01-02"`
	MealType string    `json:"meal_type" binding:"required,oneof=breakfast lunch dinner snack"`
	RecipeID uuid.UUID `json:"recipe_id" binding:"required"`
	Servings int       `json:"servings" binding:"gte=0,lte=100"`
}

// Preferences is the theme/language store
type Preferences struct {
	Theme    string `json:"theme" binding:"required,oneof=light dark system"`
	Language string `json:"language" binding:"required,bcp47_language_tag"`
}

// OnboardingDraft is the wizard's partial state, saved after each step
type OnboardingDraft struct {
	Step                int                  `json:"step" binding:"gte=0,lte=20"`
	Profile             UpdateProfileRequest `json:"profile"`
	Restrictions        []RestrictionInput   `json:"restrictions" binding:"max=100,dive"`
	Equipment           []string             `json:"equipment" binding:"max=100,dive,max=100"`
	FavoriteIngredients []string             `json:"favorite_ingredients" binding:"max=100,dive,max=100"`
}
