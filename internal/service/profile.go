package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/completion"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/nutrition"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// MealsPerDay is how the daily target is split for per-meal figures
const MealsPerDay = 3

// ProfileBundle is the profile with its three lists and the derived scores
type ProfileBundle struct {
	Profile             *models.Profile             `json:"profile"`
	Restrictions        []models.Restriction        `json:"restrictions"`
	Equipment           []models.Equipment          `json:"equipment"`
	FavoriteIngredients []models.FavoriteIngredient `json:"favorite_ingredients"`
	Completion          completion.Result           `json:"completion"`
}

// Allergies returns the names of allergy restrictions
func (b *ProfileBundle) Allergies() []string { return b.restrictionNames(models.RestrictionAllergy) }

// Preferences returns the names of dietary preferences
func (b *ProfileBundle) Preferences() []string {
	return b.restrictionNames(models.RestrictionPreference)
}

func (b *ProfileBundle) restrictionNames(kind string) []string {
	var out []string
	for _, r := range b.Restrictions {
		if r.Kind == kind {
			out = append(out, r.Name)
		}
	}
	return out
}

// NutritionGoals is the calculator result for a profile. Goals is nil when the
// profile lacks an input; Missing names those inputs.
type NutritionGoals struct {
	Goals   *nutrition.Goals  `json:"goals"`
	PerMeal *nutrition.Macros `json:"per_meal"`
	Inputs  nutrition.Inputs  `json:"inputs"`
	Missing []string          `json:"missing,omitempty"`
	// DailyCalorieTarget is the user's own target, 0 when not set
	DailyCalorieTarget int `json:"daily_calorie_target"`
}

// ProfileService handles profile operations
type ProfileService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB, log *zap.Logger) *ProfileService {
	return &ProfileService{db: db, log: logger.OrNop(log).Named("profile"), now: time.Now}
}

// withDB returns a copy bound to db, usually a transaction
func (s *ProfileService) withDB(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db, log: s.log, now: s.now}
}

// GetProfile returns the profile, creating an empty one on first access
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewDatabaseError("load profile", err)
	}

	profile = models.Profile{ID: userID}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create profile", err)
	}
	s.log.Info("profile created", zap.String("user_id", userID.String()))
	return &profile, nil
}

// GetBundle loads the profile and its lists concurrently
func (s *ProfileService) GetBundle(ctx context.Context, userID uuid.UUID) (*ProfileBundle, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	bundle := &ProfileBundle{Profile: profile}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("profile_id = ?", userID).Order("kind, name").Find(&bundle.Restrictions).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("profile_id = ?", userID).Order("name").Find(&bundle.Equipment).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("profile_id = ?", userID).Order("name").Find(&bundle.FavoriteIngredients).Error
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewDatabaseError("load profile lists", err)
	}

	if bundle.Restrictions == nil {
		bundle.Restrictions = []models.Restriction{}
	}
	if bundle.Equipment == nil {
		bundle.Equipment = []models.Equipment{}
	}
	if bundle.FavoriteIngredients == nil {
		bundle.FavoriteIngredients = []models.FavoriteIngredient{}
	}
	bundle.Completion = completion.Score(profile.CompletionFields(len(bundle.Restrictions), len(bundle.Equipment)))
	return bundle, nil
}

// UpdateProfile applies the non-nil fields. Empty strings clear a field.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := applyProfileUpdate(profile, req); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, apperrors.NewDatabaseError("update profile", err)
	}
	return profile, nil
}

func applyProfileUpdate(p *models.Profile, req *types.UpdateProfileRequest) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&p.DisplayName, req.DisplayName)
	setString(&p.AvatarURL, req.AvatarURL)
	setString(&p.Country, req.Country)
	setString(&p.Gender, req.Gender)
	setString(&p.ActivityLevel, req.ActivityLevel)
	setString(&p.Goal, req.Goal)
	setString(&p.CookingSkill, req.CookingSkill)
	setString(&p.MeasurementSystem, req.MeasurementSystem)
	if req.Currency != nil {
		p.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}

	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			p.DateOfBirth = nil
		} else {
			dob, err := time.Parse(types.DateLayout, *req.DateOfBirth)
			if err != nil {
				return apperrors.NewValidationError("date_of_birth must be YYYY-MM-DD")
			}
			p.DateOfBirth = &dob
		}
	}
	if req.HeightCm != nil {
		p.HeightCm = *req.HeightCm
	}
	if req.WeightKg != nil {
		p.WeightKg = *req.WeightKg
	}
	if req.DailyCalorieTarget != nil {
		p.DailyCalorieTarget = *req.DailyCalorieTarget
	}
	if req.PreferredCuisines != nil {
		p.PreferredCuisines = models.StringArray(cleanNames(*req.PreferredCuisines))
	}
	return nil
}

// ReplaceRestrictions swaps the whole restriction list in one transaction
func (s *ProfileService) ReplaceRestrictions(ctx context.Context, userID uuid.UUID, in []types.RestrictionInput) ([]models.Restriction, error) {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	rows := make([]models.Restriction, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, r := range in {
		kind := strings.ToLower(strings.TrimSpace(r.Kind))
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		if kind != models.RestrictionAllergy && kind != models.RestrictionPreference {
			return nil, apperrors.NewValidationError("restriction kind must be allergy or preference")
		}
		key := kind + "\x00" + strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, models.Restriction{ProfileID: userID, Kind: kind, Name: name})
	}

	if err := replaceAll(ctx, s.db, &models.Restriction{}, userID, &rows, len(rows)); err != nil {
		return nil, apperrors.NewDatabaseError("save restrictions", err)
	}
	return rows, nil
}

// ReplaceEquipment swaps the whole equipment list in one transaction
func (s *ProfileService) ReplaceEquipment(ctx context.Context, userID uuid.UUID, names []string) ([]models.Equipment, error) {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	clean := cleanNames(names)
	rows := make([]models.Equipment, 0, len(clean))
	for _, n := range clean {
		rows = append(rows, models.Equipment{ProfileID: userID, Name: n})
	}
	if err := replaceAll(ctx, s.db, &models.Equipment{}, userID, &rows, len(rows)); err != nil {
		return nil, apperrors.NewDatabaseError("save equipment", err)
	}
	return rows, nil
}

// ReplaceFavoriteIngredients swaps the whole favorite-ingredient list in one transaction
func (s *ProfileService) ReplaceFavoriteIngredients(ctx context.Context, userID uuid.UUID, names []string) ([]models.FavoriteIngredient, error) {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	clean := cleanNames(names)
	rows := make([]models.FavoriteIngredient, 0, len(clean))
	for _, n := range clean {
		rows = append(rows, models.FavoriteIngredient{ProfileID: userID, Name: n})
	}
	if err := replaceAll(ctx, s.db, &models.FavoriteIngredient{}, userID, &rows, len(rows)); err != nil {
		return nil, apperrors.NewDatabaseError("save favorite ingredients", err)
	}
	return rows, nil
}

// replaceAll deletes every row of model for the profile, then bulk inserts rows.
// An empty set only deletes.
func replaceAll(ctx context.Context, db *gorm.DB, model interface{}, profileID uuid.UUID, rows interface{}, n int) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profileID).Delete(model).Error; err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		return tx.Create(rows).Error
	})
}

// Completion scores the profile
func (s *ProfileService) Completion(ctx context.Context, userID uuid.UUID) (*completion.Result, error) {
	bundle, err := s.GetBundle(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &bundle.Completion, nil
}

// NutritionGoals runs the calculator on the stored profile
func (s *ProfileService) NutritionGoals(ctx context.Context, userID uuid.UUID) (*NutritionGoals, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return goalsFor(profile, s.now()), nil
}

func goalsFor(p *models.Profile, now time.Time) *NutritionGoals {
	in := p.NutritionInputs(now)
	out := &NutritionGoals{Inputs: in, DailyCalorieTarget: p.DailyCalorieTarget}
	if out.Goals = nutrition.CalculateGoals(in); out.Goals != nil {
		perMeal := nutrition.PerMealTargets(*out.Goals, MealsPerDay)
		out.PerMeal = &perMeal
		return out
	}

	if in.WeightKg <= 0 {
		out.Missing = append(out.Missing, "weight_kg")
	}
	if in.HeightCm <= 0 {
		out.Missing = append(out.Missing, "height_cm")
	}
	if in.Age <= 0 {
		out.Missing = append(out.Missing, "date_of_birth")
	}
	if !nutrition.IsValidGender(in.Gender) {
		out.Missing = append(out.Missing, "gender")
	}
	if !nutrition.IsValidActivityLevel(in.ActivityLevel) {
		out.Missing = append(out.Missing, "activity_level")
	}
	if !nutrition.IsValidGoal(in.Goal) {
		out.Missing = append(out.Missing, "goal")
	}
	return out
}

// MealCalories is the per-meal calorie figure used in prompts: the user's own
// target if set, otherwise the calculated goal, 0 when neither is known
func (g *NutritionGoals) MealCalories() int {
	switch {
	case g.DailyCalorieTarget > 0:
		return (g.DailyCalorieTarget + MealsPerDay/2) / MealsPerDay
	case g.PerMeal != nil:
		return g.PerMeal.Calories
	default:
		return 0
	}
}

// cleanNames trims, drops blanks and collapses case-insensitive duplicates,
// keeping the first spelling
func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
