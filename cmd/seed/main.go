// Command seed fills a development database with demo accounts, each with a
// profile, a stocked pantry and a handful of recipes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mobile/backend/config"
	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/database"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/recipeschema"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

const password = "testpassword123"

func main() {
	users := flag.Int("users", 3, "number of demo accounts")
	recipes := flag.Int("recipes", 5, "recipes per account")
	seed := flag.Int64("seed", 42, "faker seed, for repeatable data")
	flag.Parse()

	if err := run(*users, *recipes, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(users, recipes int, seed int64) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Environment.IsProduction() {
		return errors.New("refusing to seed a production database")
	}

	log := logger.New(logger.Config{Level: "info", Format: "console", Development: true})
	defer log.Sync() //nolint:errcheck

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db, cfg.Database, log); err != nil {
		return err
	}

	gofakeit.Seed(seed)
	ctx := context.Background()
	auth := service.NewAuthService(db, cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime, log)
	profiles := service.NewProfileService(db, log)
	pantry := service.NewPantryService(db, log)
	recipeService := service.NewRecipeService(db, nil, log)

	for i := 0; i < users; i++ {
		email := fmt.Sprintf("demo%d@example.com", i+1)
		resp, err := auth.Register(ctx, &types.RegisterRequest{
			Email:       email,
			Password:    password,
			DisplayName: gofakeit.Name(),
		})
		if apperrors.Is(err, apperrors.CodeEmailAlreadyExists) {
			log.Info("user exists, skipping", zap.String("email", email))
			continue
		}
		if err != nil {
			return fmt.Errorf("register %s: %w", email, err)
		}

		if _, err := profiles.UpdateProfile(ctx, resp.UserID, fakeProfile()); err != nil {
			return fmt.Errorf("profile for %s: %w", email, err)
		}
		if _, err := profiles.ReplaceRestrictions(ctx, resp.UserID, []types.RestrictionInput{
			{Kind: "allergy", Name: gofakeit.RandomString([]string{"peanuts", "shellfish", "dairy"})},
			{Kind: "preference", Name: gofakeit.RandomString([]string{"vegetarian", "low-carb", "gluten-free"})},
		}); err != nil {
			return fmt.Errorf("restrictions for %s: %w", email, err)
		}

		for j := 0; j < 8; j++ {
			if _, err := pantry.Create(ctx, resp.UserID, &types.PantryItemRequest{
				Name:     gofakeit.RandomString([]string{gofakeit.Vegetable(), gofakeit.Fruit()}),
				Quantity: float64(gofakeit.Number(1, 10)),
				Category: "produce",
			}); err != nil {
				return fmt.Errorf("pantry for %s: %w", email, err)
			}
		}

		for j := 0; j < recipes; j++ {
			if _, err := recipeService.Create(ctx, resp.UserID, fakeRecipe(), models.SourceManual, ""); err != nil {
				return fmt.Errorf("recipe for %s: %w", email, err)
			}
		}
		log.Info("seeded user", zap.String("email", email), zap.Int("recipes", recipes))
	}

	log.Info("seeding finished", zap.String("password", password))
	return nil
}

func fakeProfile() *types.UpdateProfileRequest {
	name := gofakeit.FirstName()
	skill := gofakeit.RandomString([]string{"beginner", "intermediate", "advanced"})
	gender := gofakeit.RandomString([]string{"male", "female", "other"})
	dob := time.Now().AddDate(-gofakeit.Number(20, 60), 0, -gofakeit.Number(0, 364)).Format("2006-01-02")
	height := float64(gofakeit.Number(150, 195))
	weight := float64(gofakeit.Number(50, 110))
	activity := gofakeit.RandomString([]string{"sedentary", "light", "moderate", "active"})
	goal := gofakeit.RandomString([]string{"lose", "maintain", "gain"})
	return &types.UpdateProfileRequest{
		DisplayName:   &name,
		CookingSkill:  &skill,
		Gender:        &gender,
		DateOfBirth:   &dob,
		HeightCm:      &height,
		WeightKg:      &weight,
		ActivityLevel: &activity,
		Goal:          &goal,
	}
}

func fakeRecipe() *recipeschema.Recipe {
	ingredients := make([]recipeschema.Ingredient, 0, 5)
	for i := 0; i < 5; i++ {
		ingredients = append(ingredients, recipeschema.Ingredient{
			Name:     gofakeit.Vegetable(),
			Quantity: float64(gofakeit.Number(1, 400)),
			Unit:     gofakeit.RandomString([]string{"g", "ml", "tbsp", "cup"}),
		})
	}
	steps := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		steps = append(steps, gofakeit.Sentence(10))
	}
	return &recipeschema.Recipe{
		Title:           gofakeit.Dinner(),
		Description:     gofakeit.Sentence(15),
		Servings:        gofakeit.Number(1, 6),
		PrepTimeMinutes: gofakeit.Number(5, 30),
		CookTimeMinutes: gofakeit.Number(10, 90),
		Difficulty:      gofakeit.RandomString([]string{"easy", "medium", "hard"}),
		Cuisine:         gofakeit.RandomString([]string{"Italian", "Thai", "Mexican", "Indian", "Japanese"}),
		MealType:        gofakeit.RandomString([]string{"breakfast", "lunch", "dinner"}),
		Ingredients:     ingredients,
		Steps:           steps,
		Tags:            []string{gofakeit.Adjective()},
		Nutrition: recipeschema.Nutrition{
			Calories: float64(gofakeit.Number(250, 900)),
			Protein:  float64(gofakeit.Number(5, 60)),
			Carbs:    float64(gofakeit.Number(10, 110)),
			Fat:      float64(gofakeit.Number(5, 50)),
		},
	}
}
