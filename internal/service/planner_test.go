package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/recipeschema"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/testhelpers"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

type plannerFixture struct {
	db       *gorm.DB
	userID   uuid.UUID
	pantry   *service.PantryService
	shopping *service.ShoppingService
	profiles *service.ProfileService
	plan     *service.MealPlanService
}

func setupPlanner(t *testing.T) *plannerFixture {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db)
	shopping := service.NewShoppingService(db, nil)
	profiles := service.NewProfileService(db, nil)
	return &plannerFixture{
		db:       db,
		userID:   user.ID,
		pantry:   service.NewPantryService(db, nil),
		shopping: shopping,
		profiles: profiles,
		plan:     service.NewMealPlanService(db, shopping, profiles, nil),
	}
}

func omelette() *recipeschema.Recipe {
	return &recipeschema.Recipe{
		Title: "Omelette", Servings: 2, Difficulty: "easy", MealType: "breakfast",
		Ingredients: []recipeschema.Ingredient{
			{Name: "eggs", Quantity: 4},
			{Name: "milk", Quantity: 50, Unit: "ml"},
			{Name: "Salt", Quantity: 1, Unit: "pinch"},
		},
		Steps:     []string{"Whisk", "Cook"},
		Nutrition: recipeschema.Nutrition{Calories: 300, Protein: 20, Carbs: 3, Fat: 22},
	}
}

func TestPantryCRUD(t *testing.T) {
	f := setupPlanner(t)
	ctx := context.Background()

	rice, err := f.pantry.Create(ctx, f.userID, &types.PantryItemRequest{Name: " rice ", Quantity: 1, Unit: "kg", ExpiresOn: "2026-12-01"})
	require.NoError(t, err)
	assert.Equal(t, "rice", rice.Name)
	require.NotNil(t, rice.ExpiresOn)

	_, err = f.pantry.Create(ctx, f.userID, &types.PantryItemRequest{Name: "salt"})
	require.NoError(t, err)
	_, err = f.pantry.Create(ctx, f.userID, &types.PantryItemRequest{Name: "milk", ExpiresOn: "2026-10-20"})
	require.NoError(t, err)

	items, err := f.pantry.List(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "milk", items[0].Name)
	assert.Equal(t, "salt", items[2].Name)

	updated, err := f.pantry.Update(ctx, f.userID, rice.ID, &types.PantryItemRequest{Name: "brown rice", Quantity: 2, Unit: "kg"})
	require.NoError(t, err)
	assert.Nil(t, updated.ExpiresOn)

	_, err = f.pantry.Create(ctx, f.userID, &types.PantryItemRequest{Name: "x", ExpiresOn: "tomorrow"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	require.NoError(t, f.pantry.Delete(ctx, f.userID, rice.ID))
	err = f.pantry.Delete(ctx, f.userID, rice.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestShoppingMergesMatchingItems(t *testing.T) {
	f := setupPlanner(t)
	ctx := context.Background()

	first, err := f.shopping.Create(ctx, f.userID, &types.ShoppingItemRequest{Name: "Milk", Quantity: 1, Unit: "l"})
	require.NoError(t, err)
	second, err := f.shopping.Create(ctx, f.userID, &types.ShoppingItemRequest{Name: "milk ", Quantity: 0.5, Unit: "L"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1.5, second.Quantity)

	_, err = f.shopping.Create(ctx, f.userID, &types.ShoppingItemRequest{Name: "milk", Quantity: 2, Unit: "cartons"})
	require.NoError(t, err)

	items, err := f.shopping.List(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestShoppingToggleAndClear(t *testing.T) {
	f := setupPlanner(t)
	ctx := context.Background()

	bread, err := f.shopping.Create(ctx, f.userID, &types.ShoppingItemRequest{Name: "bread", Quantity: 1})
	require.NoError(t, err)
	_, err = f.shopping.Create(ctx, f.userID, &types.ShoppingItemRequest{Name: "butter", Quantity: 1})
	require.NoError(t, err)

	toggled, err := f.shopping.Toggle(ctx, f.userID, bread.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Checked)

	items, err := f.shopping.List(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, "butter", items[0].Name)

	// a checked item no longer absorbs new quantities
	again, err := f.shopping.Create(ctx, f.userID, &types.ShoppingItemRequest{Name: "bread", Quantity: 1})
	require.NoError(t, err)
	assert.NotEqual(t, bread.ID, again.ID)

	n, err := f.shopping.ClearChecked(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	items, err = f.shopping.List(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAddFromRecipeSkipsPantry(t *testing.T) {
	f := setupPlanner(t)
	ctx := context.Background()
	r := testhelpers.CreateRecipe(t, f.db, f.userID, omelette())

	_, err := f.pantry.Create(ctx, f.userID, &types.PantryItemRequest{Name: "salt"})
	require.NoError(t, err)

	added, err := f.shopping.AddFromRecipe(ctx, f.userID, r.ID)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, "eggs", added[0].Name)
	require.NotNil(t, added[0].RecipeID)
	assert.Equal(t, r.ID, *added[0].RecipeID)

	// adding the same recipe twice doubles quantities rather than duplicating rows
	added, err = f.shopping.AddFromRecipe(ctx, f.userID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, added[0].Quantity)

	_, err = f.shopping.AddFromRecipe(ctx, f.userID, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.CodeRecipeNotFound))
}

func TestMoveCheckedToPantry(t *testing.T) {
	f := setupPlanner(t)
	ctx := context.Background()

	_, err := f.pantry.Create(ctx, f.userID, &types.PantryItemRequest{Name: "Rice", Quantity: 1, Unit: "kg"})
	require.NoError(t, err)

	checked := true
	_, err = f.shopping.Create(ctx, f.userID, &types.ShoppingItemRequest{Name: "rice", Quantity: 2, Unit: "kg"})
	require.NoError(t, err)
	beans, err := f.shopping.Create(ctx, f.userID, &types.ShoppingItemRequest{Name: "beans", Quantity: 3, Unit: "cans"})
	require.NoError(t, err)
	_, err = f.shopping.Update(ctx, f.userID, beans.ID, &types.ShoppingItemRequest{Name: "beans", Quantity: 3, Unit: "cans", Checked: &checked})
	require.NoError(t, err)

	items, err := f.shopping.List(ctx, f.userID)
	require.NoError(t, err)
	for _, it := range items {
		if it.Name == "rice" {
			_, err = f.shopping.Toggle(ctx, f.userID, it.ID)
			require.NoError(t, err)
		}
	}

	moved, err := f.shopping.MoveCheckedToPantry(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	left, err := f.shopping.List(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, left)

	pantry, err := f.pantry.List(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, pantry, 2)
	byName := map[string]float64{}
	for _, p := range pantry {
		byName[p.Name] = p.Quantity
	}
	assert.Equal(t, 3.0, byName["Rice"])
	assert.Equal(t, 3.0, byName["beans"])

	moved, err = f.shopping.MoveCheckedToPantry(ctx, f.userID)
	require.NoError(t, err)
	assert.Zero(t, moved)
}

func TestWeekBounds(t *testing.T) {
	start, end, err := service.WeekBounds("2026-10-15", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-12", start.Format(types.DateLayout))
	assert.Equal(t, "2026-10-18", end.Format(types.DateLayout))

	sunday := time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC)
	start, _, err = service.WeekBounds("", sunday)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-12", start.Format(types.DateLayout))

	_, _, err = service.WeekBounds("12/10/2026", time.Time{})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}

func TestMealPlanWeek(t *testing.T) {
	f := setupPlanner(t)
	ctx := context.Background()
	r := testhelpers.CreateRecipe(t, f.db, f.userID, omelette())
	dinner := testhelpers.CreateRecipe(t, f.db, f.userID, nil)

	first, err := f.plan.Upsert(ctx, f.userID, &types.MealPlanEntryRequest{Date: "2026-10-13", MealType: "dinner", RecipeID: dinner.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Servings)

	_, err = f.plan.Upsert(ctx, f.userID, &types.MealPlanEntryRequest{Date: "2026-10-13", MealType: "breakfast", RecipeID: r.ID, Servings: 2})
	require.NoError(t, err)

	// the same slot is replaced, keeping its id
	replaced, err := f.plan.Upsert(ctx, f.userID, &types.MealPlanEntryRequest{Date: "2026-10-13", MealType: "dinner", RecipeID: r.ID, Servings: 3})
	require.NoError(t, err)
	assert.Equal(t, first.ID, replaced.ID)
	assert.Equal(t, r.ID, replaced.RecipeID)
	assert.Equal(t, 3, replaced.Servings)
	require.NotNil(t, replaced.Recipe)

	week, err := f.plan.Week(ctx, f.userID, "2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-12", week.WeekStart)
	assert.Equal(t, "2026-10-18", week.WeekEnd)
	require.Len(t, week.Days, 7)
	tuesday := week.Days[1]
	assert.Equal(t, "2026-10-13", tuesday.Date)
	require.Len(t, tuesday.Entries, 2)
	assert.Equal(t, models.MealBreakfast, tuesday.Entries[0].MealType)
	assert.Equal(t, models.MealDinner, tuesday.Entries[1].MealType)
	assert.Empty(t, week.Days[0].Entries)

	_, err = f.plan.Upsert(ctx, f.userID, &types.MealPlanEntryRequest{Date: "2026-10-13", MealType: "dinner", RecipeID: uuid.New()})
	assert.True(t, apperrors.Is(err, apperrors.CodeRecipeNotFound))

	require.NoError(t, f.plan.Delete(ctx, f.userID, replaced.ID))
	err = f.plan.Delete(ctx, f.userID, replaced.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestWeekToShoppingListScalesServings(t *testing.T) {
	f := setupPlanner(t)
	ctx := context.Background()
	r := testhelpers.CreateRecipe(t, f.db, f.userID, omelette())

	_, err := f.plan.Upsert(ctx, f.userID, &types.MealPlanEntryRequest{Date: "2026-10-12", MealType: "breakfast", RecipeID: r.ID, Servings: 4})
	require.NoError(t, err)
	_, err = f.plan.Upsert(ctx, f.userID, &types.MealPlanEntryRequest{Date: "2026-10-14", MealType: "breakfast", RecipeID: r.ID, Servings: 1})
	require.NoError(t, err)
	// outside the week
	_, err = f.plan.Upsert(ctx, f.userID, &types.MealPlanEntryRequest{Date: "2026-10-19", MealType: "breakfast", RecipeID: r.ID, Servings: 2})
	require.NoError(t, err)

	_, err = f.pantry.Create(ctx, f.userID, &types.PantryItemRequest{Name: "milk"})
	require.NoError(t, err)

	added, err := f.shopping.List(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, added)

	added, err = f.plan.AddWeekToShoppingList(ctx, f.userID, "2026-10-12")
	require.NoError(t, err)
	byName := map[string]float64{}
	for _, it := range added {
		byName[it.Name] = it.Quantity
	}
	// 4 eggs per 2 servings, planned for 4 + 1 servings
	assert.Equal(t, 10.0, byName["eggs"])
	assert.Equal(t, 2.5, byName["Salt"])
	assert.NotContains(t, byName, "milk")

	empty, err := f.plan.AddWeekToShoppingList(ctx, f.userID, "2026-11-02")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDayNutrition(t *testing.T) {
	f := setupPlanner(t)
	ctx := context.Background()
	r := testhelpers.CreateRecipe(t, f.db, f.userID, omelette())

	_, err := f.plan.Upsert(ctx, f.userID, &types.MealPlanEntryRequest{Date: "2026-10-12", MealType: "breakfast", RecipeID: r.ID, Servings: 2})
	require.NoError(t, err)
	_, err = f.plan.Upsert(ctx, f.userID, &types.MealPlanEntryRequest{Date: "2026-10-12", MealType: "snack", RecipeID: r.ID, Servings: 1})
	require.NoError(t, err)

	day, err := f.plan.DayNutrition(ctx, f.userID, "2026-10-12")
	require.NoError(t, err)
	assert.Equal(t, 2, day.Meals)
	assert.Equal(t, 900, day.Totals.Calories)
	assert.Equal(t, 60, day.Totals.ProteinG)
	assert.Nil(t, day.Target)

	target := 2000
	_, err = f.profiles.UpdateProfile(ctx, f.userID, &types.UpdateProfileRequest{DailyCalorieTarget: &target})
	require.NoError(t, err)

	day, err = f.plan.DayNutrition(ctx, f.userID, "2026-10-12")
	require.NoError(t, err)
	require.NotNil(t, day.Target)
	assert.Equal(t, 2000, day.Target.Calories)
	assert.Equal(t, 1100, day.Remaining.Calories)

	_, err = f.plan.DayNutrition(ctx, f.userID, "yesterday")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}
