package service_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/testhelpers"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func setupProfiles(t *testing.T) (*service.ProfileService, *gorm.DB, uuid.UUID) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db)
	return service.NewProfileService(db, nil), db, user.ID
}

func TestGetBundleCreatesMissingProfile(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewProfileService(db, nil)
	userID := uuid.New()

	bundle, err := svc.GetBundle(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, bundle.Profile.ID)
	assert.Empty(t, bundle.Restrictions)
	assert.NotNil(t, bundle.Equipment)
	assert.Equal(t, 0, bundle.Completion.Percent)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, userID := setupProfiles(t)
	ctx := context.Background()

	p, err := svc.UpdateProfile(ctx, userID, &types.UpdateProfileRequest{
		DisplayName: strPtr("  Sam "),
		Currency:    strPtr("eur"),
		DateOfBirth: strPtr("1990-05-01"),
		HeightCm:    floatPtr(180),
	})
	require.NoError(t, err)
	assert.Equal(t, "Sam", p.DisplayName)
	assert.Equal(t, "EUR", p.Currency)
	require.NotNil(t, p.DateOfBirth)
	assert.Equal(t, 1990, p.DateOfBirth.Year())

	// nil fields are left alone, empty strings clear
	p, err = svc.UpdateProfile(ctx, userID, &types.UpdateProfileRequest{DateOfBirth: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, p.DateOfBirth)
	assert.Equal(t, "Sam", p.DisplayName)
	assert.Equal(t, 180.0, p.HeightCm)

	_, err = svc.UpdateProfile(ctx, userID, &types.UpdateProfileRequest{DateOfBirth: strPtr("01/05/1990")})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}

func TestReplaceListsAreWholesale(t *testing.T) {
	svc, _, userID := setupProfiles(t)
	ctx := context.Background()

	_, err := svc.ReplaceEquipment(ctx, userID, []string{"oven", "wok", "Oven", " "})
	require.NoError(t, err)
	rows, err := svc.ReplaceEquipment(ctx, userID, []string{"blender"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	bundle, err := svc.GetBundle(ctx, userID)
	require.NoError(t, err)
	require.Len(t, bundle.Equipment, 1)
	assert.Equal(t, "blender", bundle.Equipment[0].Name)

	_, err = svc.ReplaceEquipment(ctx, userID, nil)
	require.NoError(t, err)
	bundle, err = svc.GetBundle(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, bundle.Equipment)
}

func TestReplaceRestrictions(t *testing.T) {
	svc, _, userID := setupProfiles(t)
	ctx := context.Background()

	rows, err := svc.ReplaceRestrictions(ctx, userID, []types.RestrictionInput{
		{Kind: "Allergy", Name: "peanuts"},
		{Kind: "allergy", Name: "Peanuts"},
		{Kind: "preference", Name: "vegetarian"},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	bundle, err := svc.GetBundle(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"peanuts"}, bundle.Allergies())
	assert.Equal(t, []string{"vegetarian"}, bundle.Preferences())

	_, err = svc.ReplaceRestrictions(ctx, userID, []types.RestrictionInput{{Kind: "mood", Name: "x"}})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}

func TestNutritionGoals(t *testing.T) {
	svc, _, userID := setupProfiles(t)
	ctx := context.Background()

	goals, err := svc.NutritionGoals(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, goals.Goals)
	assert.Contains(t, goals.Missing, "weight_kg")
	assert.Contains(t, goals.Missing, "date_of_birth")
	assert.Equal(t, 0, goals.MealCalories())

	_, err = svc.UpdateProfile(ctx, userID, &types.UpdateProfileRequest{
		WeightKg:      floatPtr(70),
		HeightCm:      floatPtr(175),
		DateOfBirth:   strPtr("1990-01-01"),
		Gender:        strPtr("male"),
		ActivityLevel: strPtr("moderate"),
		Goal:          strPtr("maintain"),
	})
	require.NoError(t, err)

	goals, err = svc.NutritionGoals(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, goals.Goals)
	require.NotNil(t, goals.PerMeal)
	assert.Empty(t, goals.Missing)
	assert.Equal(t, goals.PerMeal.Calories, goals.MealCalories())

	target := 1800
	_, err = svc.UpdateProfile(ctx, userID, &types.UpdateProfileRequest{DailyCalorieTarget: &target})
	require.NoError(t, err)
	goals, err = svc.NutritionGoals(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 600, goals.MealCalories())
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func expectProfile(mock sqlmock.Sqlmock, userID uuid.UUID) {
	rows := sqlmock.NewRows([]string{"id", "display_name", "measurement_system", "preferred_cuisines"}).
		AddRow(userID.String(), "Cook", "metric", "[]")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles"`)).WillReturnRows(rows)
}

func TestReplaceDeletesBeforeInsertInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	svc := service.NewProfileService(db, nil)
	userID := uuid.New()

	expectProfile(mock, userID)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "profile_equipment" WHERE profile_id = $1`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "profile_equipment"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	rows, err := svc.ReplaceEquipment(context.Background(), userID, []string{"oven", "wok"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceWithEmptyListOnlyDeletes(t *testing.T) {
	db, mock := newMockDB(t)
	svc := service.NewProfileService(db, nil)
	userID := uuid.New()

	expectProfile(mock, userID)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "favorite_ingredients" WHERE profile_id = $1`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	rows, err := svc.ReplaceFavoriteIngredients(context.Background(), userID, []string{})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRollsBackOnInsertFailure(t *testing.T) {
	db, mock := newMockDB(t)
	svc := service.NewProfileService(db, nil)
	userID := uuid.New()

	expectProfile(mock, userID)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "profile_restrictions"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "profile_restrictions"`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.ReplaceRestrictions(context.Background(), userID, []types.RestrictionInput{{Kind: "allergy", Name: "soy"}})
	assert.True(t, apperrors.Is(err, apperrors.CodeDatabaseError))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletionCountsLists(t *testing.T) {
	svc, db, userID := setupProfiles(t)
	ctx := context.Background()

	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"display_name": "A", "country": "US", "currency": "USD"}).Error)

	res, err := svc.Completion(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Percent)
}
