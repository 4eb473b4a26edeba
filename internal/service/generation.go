package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/llm"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/metrics"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/recipeschema"
	"github.com/pageza/alchemorsel-mobile/backend/internal/statestore"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// RecipeDraft is a validated generated recipe held until the user saves it.
// SourceRecipeID is set for modifications; saving one updates that recipe.
type RecipeDraft struct {
	ID             uuid.UUID            `json:"id"`
	UserID         uuid.UUID            `json:"user_id"`
	Recipe         *recipeschema.Recipe `json:"recipe"`
	Provider       string               `json:"provider"`
	SourceRecipeID *uuid.UUID           `json:"source_recipe_id,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	ExpiresAt      time.Time            `json:"expires_at"`
}

// GenerationService runs the chat assistant, the recipe generator and the
// recipe modifier
type GenerationService struct {
	providers ProviderRegistry
	recipes   *RecipeService
	profiles  *ProfileService
	pantry    *PantryService
	state     StateStore
	log       *zap.Logger
	now       func() time.Time
}

var _ IGenerationService = (*GenerationService)(nil)

func NewGenerationService(providers ProviderRegistry, recipes *RecipeService, profiles *ProfileService, pantry *PantryService, state StateStore, log *zap.Logger) *GenerationService {
	return &GenerationService{
		providers: providers,
		recipes:   recipes,
		profiles:  profiles,
		pantry:    pantry,
		state:     state,
		log:       logger.OrNop(log).Named("generation"),
		now:       time.Now,
	}
}

// Chat answers a free-form question with the recent history as context
func (s *GenerationService) Chat(ctx context.Context, userID uuid.UUID, req *types.ChatRequest) (*types.ChatResponse, error) {
	provider, err := s.provider(req.Provider)
	if err != nil {
		return nil, err
	}
	reply, err := provider.Complete(ctx, llm.Request{
		System:  llm.SystemPrompt(llm.KindChat),
		User:    strings.TrimSpace(req.Message),
		History: llm.ChatHistory(req.History),
	})
	if err != nil {
		return nil, providerError(provider.Name(), err)
	}
	return &types.ChatResponse{Reply: strings.TrimSpace(reply), Provider: provider.Name()}, nil
}

// Generate builds a prompt from the form and the profile, validates the reply
// and stores it as a draft
func (s *GenerationService) Generate(ctx context.Context, userID uuid.UUID, form *types.RecipeSearchForm) (*RecipeDraft, error) {
	provider, err := s.provider(form.Provider)
	if err != nil {
		return nil, err
	}
	c, err := s.constraints(ctx, userID, form.UsePantry)
	if err != nil {
		return nil, err
	}

	reply, err := provider.Complete(ctx, llm.Request{
		System: llm.SystemPrompt(llm.KindGenerate),
		User:   llm.RecipePrompt(*form, c),
		JSON:   true,
	})
	if err != nil {
		return nil, providerError(provider.Name(), err)
	}
	rec, err := s.parse(provider.Name(), reply)
	if err != nil {
		return nil, err
	}
	return s.storeDraft(ctx, userID, rec, provider.Name(), nil)
}

// Modify asks the model to change a saved recipe. The result is a draft; the
// recipe itself is untouched until the draft is saved.
func (s *GenerationService) Modify(ctx context.Context, userID, recipeID uuid.UUID, req *types.ModifyRecipeRequest) (*RecipeDraft, error) {
	provider, err := s.provider(req.Provider)
	if err != nil {
		return nil, err
	}
	recipe, err := s.recipes.Get(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	c, err := s.constraints(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	prompt, err := llm.ModifyPrompt(recipe.Schema(), req.Instruction, c)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build prompt")
	}

	reply, err := provider.Complete(ctx, llm.Request{
		System: llm.SystemPrompt(llm.KindModify),
		User:   prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, providerError(provider.Name(), err)
	}
	rec, err := s.parse(provider.Name(), reply)
	if err != nil {
		return nil, err
	}
	return s.storeDraft(ctx, userID, rec, provider.Name(), &recipe.ID)
}

// GetDraft returns a draft owned by the user
func (s *GenerationService) GetDraft(ctx context.Context, userID, draftID uuid.UUID) (*RecipeDraft, error) {
	var d RecipeDraft
	err := s.state.Get(ctx, statestore.DraftKey(draftID), &d)
	if errors.Is(err, statestore.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("Draft")
	}
	if err != nil {
		return nil, apperrors.NewExternalServiceError("state store", err)
	}
	// other users' drafts look the same as expired ones
	if d.UserID != userID {
		return nil, apperrors.NewNotFoundError("Draft")
	}
	return &d, nil
}

func (s *GenerationService) DeleteDraft(ctx context.Context, userID, draftID uuid.UUID) error {
	if _, err := s.GetDraft(ctx, userID, draftID); err != nil {
		return err
	}
	if err := s.state.Delete(ctx, statestore.DraftKey(draftID)); err != nil {
		return apperrors.NewExternalServiceError("state store", err)
	}
	return nil
}

// SaveDraft persists the draft as a new recipe, or over its source recipe for
// modifications, then drops the draft
func (s *GenerationService) SaveDraft(ctx context.Context, userID, draftID uuid.UUID) (*models.Recipe, error) {
	d, err := s.GetDraft(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}

	var recipe *models.Recipe
	if d.SourceRecipeID != nil {
		recipe, err = s.recipes.Replace(ctx, userID, *d.SourceRecipeID, d.Recipe, d.Provider)
	} else {
		recipe, err = s.recipes.Create(ctx, userID, d.Recipe, models.SourceAI, d.Provider)
	}
	if err != nil {
		return nil, err
	}

	if err := s.state.Delete(ctx, statestore.DraftKey(draftID)); err != nil {
		// the recipe is saved; a stale draft expires on its own
		s.log.Warn("failed to delete saved draft", zap.String("draft_id", draftID.String()), zap.Error(err))
	}
	return recipe, nil
}

func (s *GenerationService) provider(name string) (llm.Provider, error) {
	p, err := s.providers.Get(name)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return p, nil
}

func (s *GenerationService) parse(provider, reply string) (*recipeschema.Recipe, error) {
	rec, err := recipeschema.Parse(reply)
	if err != nil {
		metrics.RecipeValidationFailed(provider)
		s.log.Warn("generated recipe failed validation",
			zap.String("provider", provider),
			zap.Error(err))
		return nil, apperrors.NewRecipeValidationError(err)
	}
	return rec, nil
}

func (s *GenerationService) storeDraft(ctx context.Context, userID uuid.UUID, rec *recipeschema.Recipe, provider string, source *uuid.UUID) (*RecipeDraft, error) {
	now := s.now().UTC()
	d := &RecipeDraft{
		ID:             uuid.New(),
		UserID:         userID,
		Recipe:         rec,
		Provider:       provider,
		SourceRecipeID: source,
		CreatedAt:      now,
		ExpiresAt:      now.Add(statestore.RecipeDraftTTL),
	}
	if err := s.state.Put(ctx, statestore.DraftKey(d.ID), d, statestore.RecipeDraftTTL); err != nil {
		return nil, apperrors.NewExternalServiceError("state store", err)
	}
	s.log.Info("recipe draft stored",
		zap.String("draft_id", d.ID.String()),
		zap.String("provider", provider),
		zap.Bool("modification", source != nil))
	return d, nil
}

// constraints gathers the profile facts, pantry and language for a prompt
func (s *GenerationService) constraints(ctx context.Context, userID uuid.UUID, withPantry bool) (llm.Constraints, error) {
	var (
		bundle *ProfileBundle
		pantry []string
		prefs  types.Preferences
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bundle, err = s.profiles.GetBundle(gctx, userID)
		return err
	})
	if withPantry {
		g.Go(func() error {
			var err error
			pantry, err = s.pantry.Names(gctx, userID)
			return err
		})
	}
	g.Go(func() error {
		// the language is a nicety; a missing or unreadable store means English
		if err := s.state.Get(gctx, statestore.PreferencesKey(userID), &prefs); err != nil {
			prefs = DefaultPreferences()
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return llm.Constraints{}, err
	}

	p := bundle.Profile
	c := llm.Constraints{
		Allergies:         bundle.Allergies(),
		Preferences:       bundle.Preferences(),
		Pantry:            pantry,
		CookingSkill:      p.CookingSkill,
		MeasurementSystem: p.MeasurementSystem,
		Language:          prefs.Language,
		MealCalories:      goalsFor(p, s.now()).MealCalories(),
	}
	for _, e := range bundle.Equipment {
		c.Equipment = append(c.Equipment, e.Name)
	}
	for _, f := range bundle.FavoriteIngredients {
		c.Favorites = append(c.Favorites, f.Name)
	}
	return c, nil
}

// providerError hides provider details from the client. A cancelled request is
// not reported as an upstream failure.
func providerError(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, "request cancelled")
	}
	return apperrors.NewExternalServiceError(provider, err)
}
