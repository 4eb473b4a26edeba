package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// MockPantryService is a mock implementation of service.IPantryService
type MockPantryService struct {
	mock.Mock
}

var _ service.IPantryService = (*MockPantryService)(nil)

func (m *MockPantryService) List(ctx context.Context, userID uuid.UUID) ([]models.PantryItem, error) {
	return result[[]models.PantryItem](m.Called(ctx, userID))
}

func (m *MockPantryService) Create(ctx context.Context, userID uuid.UUID, req *types.PantryItemRequest) (*models.PantryItem, error) {
	return result[*models.PantryItem](m.Called(ctx, userID, req))
}

func (m *MockPantryService) Update(ctx context.Context, userID, id uuid.UUID, req *types.PantryItemRequest) (*models.PantryItem, error) {
	return result[*models.PantryItem](m.Called(ctx, userID, id, req))
}

func (m *MockPantryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

// MockShoppingService is a mock implementation of service.IShoppingService
type MockShoppingService struct {
	mock.Mock
}

var _ service.IShoppingService = (*MockShoppingService)(nil)

func (m *MockShoppingService) List(ctx context.Context, userID uuid.UUID) ([]models.ShoppingListItem, error) {
	return result[[]models.ShoppingListItem](m.Called(ctx, userID))
}

func (m *MockShoppingService) Create(ctx context.Context, userID uuid.UUID, req *types.ShoppingItemRequest) (*models.ShoppingListItem, error) {
	return result[*models.ShoppingListItem](m.Called(ctx, userID, req))
}

func (m *MockShoppingService) Update(ctx context.Context, userID, id uuid.UUID, req *types.ShoppingItemRequest) (*models.ShoppingListItem, error) {
	return result[*models.ShoppingListItem](m.Called(ctx, userID, id, req))
}

func (m *MockShoppingService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockShoppingService) Toggle(ctx context.Context, userID, id uuid.UUID) (*models.ShoppingListItem, error) {
	return result[*models.ShoppingListItem](m.Called(ctx, userID, id))
}

func (m *MockShoppingService) ClearChecked(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShoppingService) AddFromRecipe(ctx context.Context, userID, recipeID uuid.UUID) ([]models.ShoppingListItem, error) {
	return result[[]models.ShoppingListItem](m.Called(ctx, userID, recipeID))
}

func (m *MockShoppingService) MoveCheckedToPantry(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// MockMealPlanService is a mock implementation of service.IMealPlanService
type MockMealPlanService struct {
	mock.Mock
}

var _ service.IMealPlanService = (*MockMealPlanService)(nil)

func (m *MockMealPlanService) Week(ctx context.Context, userID uuid.UUID, weekStart string) (*service.WeekPlan, error) {
	return result[*service.WeekPlan](m.Called(ctx, userID, weekStart))
}

func (m *MockMealPlanService) Upsert(ctx context.Context, userID uuid.UUID, req *types.MealPlanEntryRequest) (*models.MealPlanEntry, error) {
	return result[*models.MealPlanEntry](m.Called(ctx, userID, req))
}

func (m *MockMealPlanService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockMealPlanService) AddWeekToShoppingList(ctx context.Context, userID uuid.UUID, weekStart string) ([]models.ShoppingListItem, error) {
	return result[[]models.ShoppingListItem](m.Called(ctx, userID, weekStart))
}

func (m *MockMealPlanService) DayNutrition(ctx context.Context, userID uuid.UUID, date string) (*service.DayNutrition, error) {
	return result[*service.DayNutrition](m.Called(ctx, userID, date))
}
