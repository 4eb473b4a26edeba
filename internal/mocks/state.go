package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// MockClientStateService is a mock implementation of service.IClientStateService
type MockClientStateService struct {
	mock.Mock
}

var _ service.IClientStateService = (*MockClientStateService)(nil)

func (m *MockClientStateService) GetPreferences(ctx context.Context, userID uuid.UUID) (*types.Preferences, error) {
	return result[*types.Preferences](m.Called(ctx, userID))
}

func (m *MockClientStateService) PutPreferences(ctx context.Context, userID uuid.UUID, p *types.Preferences) error {
	return m.Called(ctx, userID, p).Error(0)
}

func (m *MockClientStateService) GetOnboarding(ctx context.Context, userID uuid.UUID) (*types.OnboardingDraft, error) {
	return result[*types.OnboardingDraft](m.Called(ctx, userID))
}

func (m *MockClientStateService) PutOnboarding(ctx context.Context, userID uuid.UUID, d *types.OnboardingDraft) error {
	return m.Called(ctx, userID, d).Error(0)
}

func (m *MockClientStateService) DeleteOnboarding(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockClientStateService) CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*service.ProfileBundle, error) {
	return result[*service.ProfileBundle](m.Called(ctx, userID))
}

func (m *MockClientStateService) GetRecipeForm(ctx context.Context, userID uuid.UUID) (*types.RecipeSearchForm, error) {
	return result[*types.RecipeSearchForm](m.Called(ctx, userID))
}

func (m *MockClientStateService) PutRecipeForm(ctx context.Context, userID uuid.UUID, f *types.RecipeSearchForm) error {
	return m.Called(ctx, userID, f).Error(0)
}

func (m *MockClientStateService) DeleteRecipeForm(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}
