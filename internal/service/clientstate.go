package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/statestore"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// DefaultPreferences is what a user gets before ever saving preferences
func DefaultPreferences() types.Preferences {
	return types.Preferences{Theme: "system", Language: "en"}
}

// ClientStateService persists the app's client-side stores per user
type ClientStateService struct {
	state    StateStore
	profiles *ProfileService
	db       *gorm.DB
	log      *zap.Logger
}

var _ IClientStateService = (*ClientStateService)(nil)

func NewClientStateService(state StateStore, profiles *ProfileService, db *gorm.DB, log *zap.Logger) *ClientStateService {
	return &ClientStateService{state: state, profiles: profiles, db: db, log: logger.OrNop(log).Named("clientstate")}
}

func (s *ClientStateService) GetPreferences(ctx context.Context, userID uuid.UUID) (*types.Preferences, error) {
	var p types.Preferences
	err := s.state.Get(ctx, statestore.PreferencesKey(userID), &p)
	if errors.Is(err, statestore.ErrNotFound) {
		p = DefaultPreferences()
		return &p, nil
	}
	if err != nil {
		return nil, apperrors.NewExternalServiceError("state store", err)
	}
	return &p, nil
}

func (s *ClientStateService) PutPreferences(ctx context.Context, userID uuid.UUID, p *types.Preferences) error {
	return s.put(ctx, statestore.PreferencesKey(userID), p, 0)
}

func (s *ClientStateService) GetOnboarding(ctx context.Context, userID uuid.UUID) (*types.OnboardingDraft, error) {
	var d types.OnboardingDraft
	if err := s.get(ctx, statestore.OnboardingKey(userID), &d, "Onboarding draft"); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *ClientStateService) PutOnboarding(ctx context.Context, userID uuid.UUID, d *types.OnboardingDraft) error {
	return s.put(ctx, statestore.OnboardingKey(userID), d, statestore.OnboardingTTL)
}

func (s *ClientStateService) DeleteOnboarding(ctx context.Context, userID uuid.UUID) error {
	return s.delete(ctx, statestore.OnboardingKey(userID))
}

// CompleteOnboarding applies the saved draft to the profile and its lists,
// marks onboarding complete and drops the draft. The database writes share
// one transaction; the draft survives a failure.
func (s *ClientStateService) CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*ProfileBundle, error) {
	draft, err := s.GetOnboarding(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profiles := s.profiles.withDB(tx)
		if _, err := profiles.UpdateProfile(ctx, userID, &draft.Profile); err != nil {
			return err
		}
		if _, err := profiles.ReplaceRestrictions(ctx, userID, draft.Restrictions); err != nil {
			return err
		}
		if _, err := profiles.ReplaceEquipment(ctx, userID, draft.Equipment); err != nil {
			return err
		}
		if _, err := profiles.ReplaceFavoriteIngredients(ctx, userID, draft.FavoriteIngredients); err != nil {
			return err
		}
		err := tx.Model(&models.Profile{}).
			Where("id = ?", userID).
			UpdateColumn("onboarding_completed", true).Error
		if err != nil {
			return apperrors.NewDatabaseError("complete onboarding", err)
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.NewDatabaseError("complete onboarding", err)
	}

	if err := s.state.Delete(ctx, statestore.OnboardingKey(userID)); err != nil {
		s.log.Warn("failed to delete onboarding draft", zap.String("user_id", userID.String()), zap.Error(err))
	}
	s.log.Info("onboarding completed", zap.String("user_id", userID.String()))
	return s.profiles.GetBundle(ctx, userID)
}

func (s *ClientStateService) GetRecipeForm(ctx context.Context, userID uuid.UUID) (*types.RecipeSearchForm, error) {
	var f types.RecipeSearchForm
	if err := s.get(ctx, statestore.RecipeFormKey(userID), &f, "Recipe form"); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *ClientStateService) PutRecipeForm(ctx context.Context, userID uuid.UUID, f *types.RecipeSearchForm) error {
	return s.put(ctx, statestore.RecipeFormKey(userID), f, statestore.RecipeFormTTL)
}

func (s *ClientStateService) DeleteRecipeForm(ctx context.Context, userID uuid.UUID) error {
	return s.delete(ctx, statestore.RecipeFormKey(userID))
}

func (s *ClientStateService) get(ctx context.Context, key string, dst any, resource string) error {
	err := s.state.Get(ctx, key, dst)
	if errors.Is(err, statestore.ErrNotFound) {
		return apperrors.NewNotFoundError(resource)
	}
	if err != nil {
		return apperrors.NewExternalServiceError("state store", err)
	}
	return nil
}

func (s *ClientStateService) put(ctx context.Context, key string, v any, ttl time.Duration) error {
	if err := s.state.Put(ctx, key, v, ttl); err != nil {
		return apperrors.NewExternalServiceError("state store", err)
	}
	return nil
}

func (s *ClientStateService) delete(ctx context.Context, key string) error {
	if err := s.state.Delete(ctx, key); err != nil {
		return apperrors.NewExternalServiceError("state store", err)
	}
	return nil
}
