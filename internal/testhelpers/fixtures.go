package testhelpers

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/recipeschema"
)

// CreateUser inserts a user and an empty profile sharing its id
func CreateUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        gofakeit.Email(),
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := db.Create(&models.Profile{ID: user.ID}).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return user
}

// FakeRecipe returns a valid recipe with random content
func FakeRecipe() *recipeschema.Recipe {
	ingredients := make([]recipeschema.Ingredient, 0, 4)
	for i := 0; i < 4; i++ {
		ingredients = append(ingredients, recipeschema.Ingredient{
			Name:     gofakeit.Vegetable(),
			Quantity: float64(gofakeit.Number(1, 500)),
			Unit:     gofakeit.RandomString([]string{"g", "ml", "tbsp", ""}),
		})
	}
	return &recipeschema.Recipe{
		Title:           gofakeit.Dinner(),
		Description:     gofakeit.Sentence(12),
		Servings:        gofakeit.Number(1, 6),
		PrepTimeMinutes: gofakeit.Number(5, 30),
		CookTimeMinutes: gofakeit.Number(0, 60),
		Difficulty:      gofakeit.RandomString([]string{"easy", "medium", "hard"}),
		Cuisine:         gofakeit.RandomString([]string{"Italian", "Thai", "Mexican", "Indian"}),
		MealType:        "dinner",
		Ingredients:     ingredients,
		Steps:           []string{gofakeit.Sentence(8), gofakeit.Sentence(8)},
		Tags:            []string{gofakeit.Word()},
		Nutrition: recipeschema.Nutrition{
			Calories: float64(gofakeit.Number(200, 900)),
			Protein:  float64(gofakeit.Number(5, 60)),
			Carbs:    float64(gofakeit.Number(5, 100)),
			Fat:      float64(gofakeit.Number(5, 50)),
		},
	}
}

// CreateRecipe stores s (or a fake recipe when nil) for the profile
func CreateRecipe(t *testing.T, db *gorm.DB, profileID uuid.UUID, s *recipeschema.Recipe) *models.Recipe {
	t.Helper()
	if s == nil {
		s = FakeRecipe()
	}
	r := &models.Recipe{ProfileID: profileID, Source: models.SourceManual}
	r.Apply(s)
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return r
}
