package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/alchemorsel-mobile/backend/internal/completion"
	"github.com/pageza/alchemorsel-mobile/backend/internal/llm"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// ImageStore is the recipe image bucket
type ImageStore interface {
	Upload(ctx context.Context, userID, recipeID uuid.UUID, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
	MaxBytes() int64
}

// StateStore is the per-user key/value store for client state and drafts
type StateStore interface {
	Get(ctx context.Context, key string, dst any) error
	Put(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ProviderRegistry resolves LLM providers by name; "" is the default
type ProviderRegistry interface {
	Get(name string) (llm.Provider, error)
	Default() string
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.AuthResponse, error)
	Login(ctx context.Context, req *types.LoginRequest) (*types.AuthResponse, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IProfileService defines the interface for profile operations
type IProfileService interface {
	GetBundle(ctx context.Context, userID uuid.UUID) (*ProfileBundle, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error)
	ReplaceRestrictions(ctx context.Context, userID uuid.UUID, in []types.RestrictionInput) ([]models.Restriction, error)
	ReplaceEquipment(ctx context.Context, userID uuid.UUID, names []string) ([]models.Equipment, error)
	ReplaceFavoriteIngredients(ctx context.Context, userID uuid.UUID, names []string) ([]models.FavoriteIngredient, error)
	Completion(ctx context.Context, userID uuid.UUID) (*completion.Result, error)
	NutritionGoals(ctx context.Context, userID uuid.UUID) (*NutritionGoals, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, userID uuid.UUID, filter RecipeFilter) ([]models.Recipe, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error)
	CreateManual(ctx context.Context, userID uuid.UUID, raw []byte) (*models.Recipe, error)
	UpdateManual(ctx context.Context, userID, id uuid.UUID, raw []byte) (*models.Recipe, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ToggleFavorite(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error)
	Similar(ctx context.Context, userID, id uuid.UUID, limit int) ([]models.Recipe, error)
	SetImage(ctx context.Context, userID, id uuid.UUID, contentType string, body io.Reader, size int64) (*models.Recipe, error)
	RemoveImage(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error)
}

// IGenerationService defines the interface for the LLM-backed features
type IGenerationService interface {
	Chat(ctx context.Context, userID uuid.UUID, req *types.ChatRequest) (*types.ChatResponse, error)
	Generate(ctx context.Context, userID uuid.UUID, form *types.RecipeSearchForm) (*RecipeDraft, error)
	Modify(ctx context.Context, userID, recipeID uuid.UUID, req *types.ModifyRecipeRequest) (*RecipeDraft, error)
	GetDraft(ctx context.Context, userID, draftID uuid.UUID) (*RecipeDraft, error)
	DeleteDraft(ctx context.Context, userID, draftID uuid.UUID) error
	SaveDraft(ctx context.Context, userID, draftID uuid.UUID) (*models.Recipe, error)
}

// IPantryService defines the interface for pantry operations
type IPantryService interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.PantryItem, error)
	Create(ctx context.Context, userID uuid.UUID, req *types.PantryItemRequest) (*models.PantryItem, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *types.PantryItemRequest) (*models.PantryItem, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// IShoppingService defines the interface for shopping list operations
type IShoppingService interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.ShoppingListItem, error)
	Create(ctx context.Context, userID uuid.UUID, req *types.ShoppingItemRequest) (*models.ShoppingListItem, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *types.ShoppingItemRequest) (*models.ShoppingListItem, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Toggle(ctx context.Context, userID, id uuid.UUID) (*models.ShoppingListItem, error)
	ClearChecked(ctx context.Context, userID uuid.UUID) (int64, error)
	AddFromRecipe(ctx context.Context, userID, recipeID uuid.UUID) ([]models.ShoppingListItem, error)
	MoveCheckedToPantry(ctx context.Context, userID uuid.UUID) (int, error)
}

// IMealPlanService defines the interface for the weekly planner
type IMealPlanService interface {
	Week(ctx context.Context, userID uuid.UUID, weekStart string) (*WeekPlan, error)
	Upsert(ctx context.Context, userID uuid.UUID, req *types.MealPlanEntryRequest) (*models.MealPlanEntry, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	AddWeekToShoppingList(ctx context.Context, userID uuid.UUID, weekStart string) ([]models.ShoppingListItem, error)
	DayNutrition(ctx context.Context, userID uuid.UUID, date string) (*DayNutrition, error)
}

// IClientStateService defines the interface for the persisted client stores
type IClientStateService interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (*types.Preferences, error)
	PutPreferences(ctx context.Context, userID uuid.UUID, p *types.Preferences) error
	GetOnboarding(ctx context.Context, userID uuid.UUID) (*types.OnboardingDraft, error)
	PutOnboarding(ctx context.Context, userID uuid.UUID, d *types.OnboardingDraft) error
	DeleteOnboarding(ctx context.Context, userID uuid.UUID) error
	CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*ProfileBundle, error)
	GetRecipeForm(ctx context.Context, userID uuid.UUID) (*types.RecipeSearchForm, error)
	PutRecipeForm(ctx context.Context, userID uuid.UUID, f *types.RecipeSearchForm) error
	DeleteRecipeForm(ctx context.Context, userID uuid.UUID) error
}
