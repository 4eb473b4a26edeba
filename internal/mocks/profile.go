package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-mobile/backend/internal/completion"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// MockProfileService is a mock implementation of service.IProfileService
type MockProfileService struct {
	mock.Mock
}

var _ service.IProfileService = (*MockProfileService)(nil)

func (m *MockProfileService) GetBundle(ctx context.Context, userID uuid.UUID) (*service.ProfileBundle, error) {
	return result[*service.ProfileBundle](m.Called(ctx, userID))
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error) {
	return result[*models.Profile](m.Called(ctx, userID, req))
}

func (m *MockProfileService) ReplaceRestrictions(ctx context.Context, userID uuid.UUID, in []types.RestrictionInput) ([]models.Restriction, error) {
	return result[[]models.Restriction](m.Called(ctx, userID, in))
}

func (m *MockProfileService) ReplaceEquipment(ctx context.Context, userID uuid.UUID, names []string) ([]models.Equipment, error) {
	return result[[]models.Equipment](m.Called(ctx, userID, names))
}

func (m *MockProfileService) ReplaceFavoriteIngredients(ctx context.Context, userID uuid.UUID, names []string) ([]models.FavoriteIngredient, error) {
	return result[[]models.FavoriteIngredient](m.Called(ctx, userID, names))
}

func (m *MockProfileService) Completion(ctx context.Context, userID uuid.UUID) (*completion.Result, error) {
	return result[*completion.Result](m.Called(ctx, userID))
}

func (m *MockProfileService) NutritionGoals(ctx context.Context, userID uuid.UUID) (*service.NutritionGoals, error) {
	return result[*service.NutritionGoals](m.Called(ctx, userID))
}
