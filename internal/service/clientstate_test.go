package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/statestore"
	"github.com/pageza/alchemorsel-mobile/backend/internal/testhelpers"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

func setupClientState(t *testing.T) (*service.ClientStateService, *testhelpers.FakeRedis, uuid.UUID) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db)
	rdb := testhelpers.NewFakeRedis()
	svc := service.NewClientStateService(statestore.New(rdb, nil), service.NewProfileService(db, nil), db, nil)
	return svc, rdb, user.ID
}

func TestPreferencesDefaultAndSave(t *testing.T) {
	svc, rdb, userID := setupClientState(t)
	ctx := context.Background()

	prefs, err := svc.GetPreferences(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "system", prefs.Theme)
	assert.Equal(t, "en", prefs.Language)

	require.NoError(t, svc.PutPreferences(ctx, userID, &types.Preferences{Theme: "dark", Language: "fr"}))
	prefs, err = svc.GetPreferences(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "dark", prefs.Theme)
	assert.Zero(t, rdb.TTLOf(statestore.PreferencesKey(userID)))
}

func TestRecipeFormDraft(t *testing.T) {
	svc, rdb, userID := setupClientState(t)
	ctx := context.Background()

	_, err := svc.GetRecipeForm(ctx, userID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	form := &types.RecipeSearchForm{Prompt: "tacos", QuickFilters: []string{"quick"}, Servings: 2}
	require.NoError(t, svc.PutRecipeForm(ctx, userID, form))
	assert.Equal(t, statestore.RecipeFormTTL, rdb.TTLOf(statestore.RecipeFormKey(userID)))

	// last write wins
	form.Prompt = "burritos"
	require.NoError(t, svc.PutRecipeForm(ctx, userID, form))
	got, err := svc.GetRecipeForm(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "burritos", got.Prompt)
	assert.Equal(t, []string{"quick"}, got.QuickFilters)

	require.NoError(t, svc.DeleteRecipeForm(ctx, userID))
	require.NoError(t, svc.DeleteRecipeForm(ctx, userID))
	_, err = svc.GetRecipeForm(ctx, userID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestCompleteOnboarding(t *testing.T) {
	svc, rdb, userID := setupClientState(t)
	ctx := context.Background()

	_, err := svc.CompleteOnboarding(ctx, userID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	name, country := "Robin", "NZ"
	draft := &types.OnboardingDraft{
		Step:                4,
		Profile:             types.UpdateProfileRequest{DisplayName: &name, Country: &country},
		Restrictions:        []types.RestrictionInput{{Kind: "preference", Name: "vegan"}},
		Equipment:           []string{"oven", "air fryer"},
		FavoriteIngredients: []string{"tofu"},
	}
	require.NoError(t, svc.PutOnboarding(ctx, userID, draft))
	assert.Equal(t, statestore.OnboardingTTL, rdb.TTLOf(statestore.OnboardingKey(userID)))

	saved, err := svc.GetOnboarding(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4, saved.Step)

	bundle, err := svc.CompleteOnboarding(ctx, userID)
	require.NoError(t, err)
	assert.True(t, bundle.Profile.OnboardingCompleted)
	assert.Equal(t, "Robin", bundle.Profile.DisplayName)
	assert.Equal(t, []string{"vegan"}, bundle.Preferences())
	assert.Len(t, bundle.Equipment, 2)
	assert.Len(t, bundle.FavoriteIngredients, 1)
	assert.False(t, rdb.Has(statestore.OnboardingKey(userID)))
}

func TestCompleteOnboardingIsAllOrNothing(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	userID := testhelpers.CreateUser(t, db).ID
	rdb := testhelpers.NewFakeRedis()
	profiles := service.NewProfileService(db, nil)
	svc := service.NewClientStateService(statestore.New(rdb, nil), profiles, db, nil)
	ctx := context.Background()

	name := "Robin"
	require.NoError(t, svc.PutOnboarding(ctx, userID, &types.OnboardingDraft{
		Profile:      types.UpdateProfileRequest{DisplayName: &name},
		Restrictions: []types.RestrictionInput{{Kind: "religious", Name: "halal"}},
		Equipment:    []string{"wok"},
	}))

	_, err := svc.CompleteOnboarding(ctx, userID)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
	assert.True(t, rdb.Has(statestore.OnboardingKey(userID)))

	bundle, err := profiles.GetBundle(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, bundle.Profile.DisplayName)
	assert.False(t, bundle.Profile.OnboardingCompleted)
	assert.Empty(t, bundle.Equipment)
}

func TestStateStoreOutage(t *testing.T) {
	svc, rdb, userID := setupClientState(t)
	rdb.Err = errors.New("connection refused")

	_, err := svc.GetPreferences(context.Background(), userID)
	assert.True(t, apperrors.Is(err, apperrors.CodeExternalServiceError))

	err = svc.PutOnboarding(context.Background(), userID, &types.OnboardingDraft{})
	assert.True(t, apperrors.Is(err, apperrors.CodeExternalServiceError))
}
