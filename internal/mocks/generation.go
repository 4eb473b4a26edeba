package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// MockGenerationService is a mock implementation of service.IGenerationService
type MockGenerationService struct {
	mock.Mock
}

var _ service.IGenerationService = (*MockGenerationService)(nil)

func (m *MockGenerationService) Chat(ctx context.Context, userID uuid.UUID, req *types.ChatRequest) (*types.ChatResponse, error) {
	return result[*types.ChatResponse](m.Called(ctx, userID, req))
}

func (m *MockGenerationService) Generate(ctx context.Context, userID uuid.UUID, form *types.RecipeSearchForm) (*service.RecipeDraft, error) {
	return result[*service.RecipeDraft](m.Called(ctx, userID, form))
}

func (m *MockGenerationService) Modify(ctx context.Context, userID, recipeID uuid.UUID, req *types.ModifyRecipeRequest) (*service.RecipeDraft, error) {
	return result[*service.RecipeDraft](m.Called(ctx, userID, recipeID, req))
}

func (m *MockGenerationService) GetDraft(ctx context.Context, userID, draftID uuid.UUID) (*service.RecipeDraft, error) {
	return result[*service.RecipeDraft](m.Called(ctx, userID, draftID))
}

func (m *MockGenerationService) DeleteDraft(ctx context.Context, userID, draftID uuid.UUID) error {
	return m.Called(ctx, userID, draftID).Error(0)
}

func (m *MockGenerationService) SaveDraft(ctx context.Context, userID, draftID uuid.UUID) (*models.Recipe, error) {
	return result[*models.Recipe](m.Called(ctx, userID, draftID))
}
