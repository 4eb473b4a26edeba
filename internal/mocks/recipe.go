package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
)

// MockRecipeService is a mock implementation of service.IRecipeService
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) List(ctx context.Context, userID uuid.UUID, filter service.RecipeFilter) ([]models.Recipe, error) {
	return result[[]models.Recipe](m.Called(ctx, userID, filter))
}

func (m *MockRecipeService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	return result[*models.Recipe](m.Called(ctx, userID, id))
}

func (m *MockRecipeService) CreateManual(ctx context.Context, userID uuid.UUID, raw []byte) (*models.Recipe, error) {
	return result[*models.Recipe](m.Called(ctx, userID, raw))
}

func (m *MockRecipeService) UpdateManual(ctx context.Context, userID, id uuid.UUID, raw []byte) (*models.Recipe, error) {
	return result[*models.Recipe](m.Called(ctx, userID, id, raw))
}

func (m *MockRecipeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockRecipeService) ToggleFavorite(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	return result[*models.Recipe](m.Called(ctx, userID, id))
}

func (m *MockRecipeService) Similar(ctx context.Context, userID, id uuid.UUID, limit int) ([]models.Recipe, error) {
	return result[[]models.Recipe](m.Called(ctx, userID, id, limit))
}

// SetImage reads body to the end; expectations match on contentType and size
func (m *MockRecipeService) SetImage(ctx context.Context, userID, id uuid.UUID, contentType string, body io.Reader, size int64) (*models.Recipe, error) {
	_, _ = io.Copy(io.Discard, body)
	return result[*models.Recipe](m.Called(ctx, userID, id, contentType, size))
}

func (m *MockRecipeService) RemoveImage(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	return result[*models.Recipe](m.Called(ctx, userID, id))
}
