package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/recipeschema"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/storage"
	"github.com/pageza/alchemorsel-mobile/backend/internal/testhelpers"
)

// memImages keeps uploaded objects in a map
type memImages struct {
	objects map[string][]byte
	failURL bool
}

func newMemImages() *memImages { return &memImages{objects: map[string][]byte{}} }

func (m *memImages) Upload(_ context.Context, userID, recipeID uuid.UUID, contentType string, body io.Reader, _ int64) (string, error) {
	ext, err := storage.ExtensionFor(contentType)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if int64(len(data)) > m.MaxBytes() {
		return "", storage.ErrTooLarge
	}
	key := storage.ObjectKey(userID, recipeID, ext)
	m.objects[key] = data
	return key, nil
}

func (m *memImages) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memImages) URL(_ context.Context, key string) (string, error) {
	if m.failURL {
		return "", errors.New("presign failed")
	}
	return "https://images.test/" + key, nil
}

func (m *memImages) MaxBytes() int64 { return 8 }

const manualRecipe = `{
  "title": "Tomato Soup",
  "servings": "4",
  "difficulty": "easy",
  "meal_type": "Lunch",
  "ingredients": [{"name": "tomatoes", "quantity": 800, "unit": "g"}, {"name": "onion", "quantity": 1}],
  "steps": ["Chop", "Simmer", "Blend"],
  "nutrition": {"calories": 180, "protein": 4, "carbs": 20, "fat": 8}
}`

func setupRecipes(t *testing.T) (*service.RecipeService, *gorm.DB, *memImages, uuid.UUID) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db)
	images := newMemImages()
	return service.NewRecipeService(db, images, nil), db, images, user.ID
}

func TestCreateManualRecipe(t *testing.T) {
	svc, _, _, userID := setupRecipes(t)
	ctx := context.Background()

	r, err := svc.CreateManual(ctx, userID, []byte(manualRecipe))
	require.NoError(t, err)
	assert.Equal(t, "Tomato Soup", r.Title)
	assert.Equal(t, 4, r.Servings)
	assert.Equal(t, "lunch", r.MealType)
	assert.Equal(t, models.SourceManual, r.Source)
	assert.Len(t, r.Ingredients, 2)

	got, err := svc.Get(ctx, userID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Title, got.Title)
	assert.Equal(t, []string{"Chop", "Simmer", "Blend"}, []string(got.Steps))
}

func TestCreateManualRejectsInvalid(t *testing.T) {
	svc, _, _, userID := setupRecipes(t)

	_, err := svc.CreateManual(context.Background(), userID, []byte(`{"ingredients":[{"name":"x"}],"steps":["y"]}`))
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}

func TestRecipesAreScopedToOwner(t *testing.T) {
	svc, db, _, userID := setupRecipes(t)
	other := testhelpers.CreateUser(t, db)
	r := testhelpers.CreateRecipe(t, db, other.ID, nil)

	_, err := svc.Get(context.Background(), userID, r.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeRecipeNotFound))

	err = svc.Delete(context.Background(), userID, r.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeRecipeNotFound))
}

func TestListFilters(t *testing.T) {
	svc, db, _, userID := setupRecipes(t)
	ctx := context.Background()

	soup := testhelpers.FakeRecipe()
	soup.Title = "Green Curry"
	soup.MealType = "dinner"
	curry := testhelpers.CreateRecipe(t, db, userID, soup)

	pancakes := testhelpers.FakeRecipe()
	pancakes.Title = "Pancakes"
	pancakes.Cuisine = "American"
	pancakes.MealType = "breakfast"
	testhelpers.CreateRecipe(t, db, userID, pancakes)

	all, err := svc.List(ctx, userID, service.RecipeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.List(ctx, userID, service.RecipeFilter{Query: "CURRY"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, curry.ID, found[0].ID)

	found, err = svc.List(ctx, userID, service.RecipeFilter{MealType: "Breakfast"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Pancakes", found[0].Title)

	_, err = svc.ToggleFavorite(ctx, userID, curry.ID)
	require.NoError(t, err)
	favs, err := svc.List(ctx, userID, service.RecipeFilter{FavoritesOnly: true})
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.True(t, favs[0].IsFavorite)

	r, err := svc.ToggleFavorite(ctx, userID, curry.ID)
	require.NoError(t, err)
	assert.False(t, r.IsFavorite)
}

func TestListQueryMatchesWildcardsLiterally(t *testing.T) {
	svc, db, _, userID := setupRecipes(t)
	ctx := context.Background()

	for _, title := range []string{"100% Rye Bread", "1000 Island Salad", "Snake_Case Noodles", "Snakes Noodles"} {
		rec := testhelpers.FakeRecipe()
		rec.Title = title
		rec.Description = "plain"
		rec.Cuisine = "Test"
		testhelpers.CreateRecipe(t, db, userID, rec)
	}

	found, err := svc.List(ctx, userID, service.RecipeFilter{Query: "100%"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% Rye Bread", found[0].Title)

	found, err = svc.List(ctx, userID, service.RecipeFilter{Query: "snake_"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Snake_Case Noodles", found[0].Title)

	found, err = svc.List(ctx, userID, service.RecipeFilter{Query: "%"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestUpdateManualKeepsFavoriteAndImage(t *testing.T) {
	svc, db, _, userID := setupRecipes(t)
	ctx := context.Background()
	r := testhelpers.CreateRecipe(t, db, userID, nil)

	_, err := svc.ToggleFavorite(ctx, userID, r.ID)
	require.NoError(t, err)
	_, err = svc.SetImage(ctx, userID, r.ID, "image/png", strings.NewReader("png"), 3)
	require.NoError(t, err)

	updated, err := svc.UpdateManual(ctx, userID, r.ID, []byte(manualRecipe))
	require.NoError(t, err)
	assert.Equal(t, "Tomato Soup", updated.Title)
	assert.True(t, updated.IsFavorite)
	assert.NotEmpty(t, updated.ImageURL)
}

func TestSimilarRanksByContent(t *testing.T) {
	svc, db, _, userID := setupRecipes(t)
	ctx := context.Background()

	base := &recipeschema.Recipe{
		Title: "Chicken Tikka Masala", Cuisine: "Indian", MealType: "dinner", Servings: 4, Difficulty: "medium",
		Ingredients: []recipeschema.Ingredient{{Name: "chicken"}, {Name: "garam masala"}, {Name: "cream"}},
		Steps:       []string{"Cook"},
	}
	target := testhelpers.CreateRecipe(t, db, userID, base)

	korma := *base
	korma.Title = "Chicken Korma"
	closeRec := testhelpers.CreateRecipe(t, db, userID, &korma)

	far := &recipeschema.Recipe{
		Title: "Blueberry Muffins", Cuisine: "American", MealType: "breakfast", Servings: 12, Difficulty: "easy",
		Ingredients: []recipeschema.Ingredient{{Name: "flour"}, {Name: "blueberries"}},
		Steps:       []string{"Bake"},
	}
	testhelpers.CreateRecipe(t, db, userID, far)

	similar, err := svc.Similar(ctx, userID, target.ID, 0)
	require.NoError(t, err)
	require.Len(t, similar, 2)
	assert.Equal(t, closeRec.ID, similar[0].ID)

	similar, err = svc.Similar(ctx, userID, target.ID, 1)
	require.NoError(t, err)
	assert.Len(t, similar, 1)
}

func TestRecipeImages(t *testing.T) {
	svc, db, images, userID := setupRecipes(t)
	ctx := context.Background()
	r := testhelpers.CreateRecipe(t, db, userID, nil)

	withImage, err := svc.SetImage(ctx, userID, r.ID, "image/png", strings.NewReader("png"), 3)
	require.NoError(t, err)
	pngKey := storage.ObjectKey(userID, r.ID, "png")
	assert.Equal(t, "https://images.test/"+pngKey, withImage.ImageURL)
	assert.Contains(t, images.objects, pngKey)

	// a different extension replaces the old object
	_, err = svc.SetImage(ctx, userID, r.ID, "image/webp", strings.NewReader("webp"), 4)
	require.NoError(t, err)
	assert.NotContains(t, images.objects, pngKey)
	assert.Contains(t, images.objects, storage.ObjectKey(userID, r.ID, "webp"))

	_, err = svc.SetImage(ctx, userID, r.ID, "image/gif", strings.NewReader("gif"), 3)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	_, err = svc.SetImage(ctx, userID, r.ID, "image/png", strings.NewReader("way too large"), -1)
	assert.True(t, apperrors.Is(err, apperrors.CodePayloadTooLarge))

	cleared, err := svc.RemoveImage(ctx, userID, r.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.ImageURL)
	assert.Empty(t, images.objects)
}

func TestBrokenImageURLDoesNotFailReads(t *testing.T) {
	svc, db, images, userID := setupRecipes(t)
	ctx := context.Background()
	r := testhelpers.CreateRecipe(t, db, userID, nil)
	_, err := svc.SetImage(ctx, userID, r.ID, "image/png", strings.NewReader("png"), 3)
	require.NoError(t, err)

	images.failURL = true
	got, err := svc.Get(ctx, userID, r.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ImageURL)
}

func TestImagesWithoutStorage(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db)
	svc := service.NewRecipeService(db, nil, nil)
	r := testhelpers.CreateRecipe(t, db, user.ID, nil)

	_, err := svc.SetImage(context.Background(), user.ID, r.ID, "image/png", strings.NewReader("png"), 3)
	assert.True(t, apperrors.Is(err, apperrors.CodeExternalServiceError))
}

func TestDeleteRecipeCleansUp(t *testing.T) {
	svc, db, images, userID := setupRecipes(t)
	ctx := context.Background()
	r := testhelpers.CreateRecipe(t, db, userID, nil)
	_, err := svc.SetImage(ctx, userID, r.ID, "image/jpeg", strings.NewReader("jpg"), 3)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.MealPlanEntry{
		ProfileID: userID, PlannedOn: "2026-10-12", MealType: models.MealDinner, RecipeID: r.ID, Servings: 2,
	}).Error)
	recipeID := r.ID
	item := &models.ShoppingListItem{ProfileID: userID, Name: "rice", RecipeID: &recipeID}
	require.NoError(t, db.Create(item).Error)

	require.NoError(t, svc.Delete(ctx, userID, r.ID))

	var entries int64
	require.NoError(t, db.Model(&models.MealPlanEntry{}).Where("recipe_id = ?", r.ID).Count(&entries).Error)
	assert.Zero(t, entries)

	var kept models.ShoppingListItem
	require.NoError(t, db.First(&kept, "id = ?", item.ID).Error)
	assert.Nil(t, kept.RecipeID)
	assert.Empty(t, images.objects)

	_, err = svc.Get(ctx, userID, r.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeRecipeNotFound))
}
