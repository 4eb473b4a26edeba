package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/nutrition"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// DayPlan is one day of the planner
type DayPlan struct {
	Date    string                 `json:"date"`
	Entries []models.MealPlanEntry `json:"entries"`
}

// WeekPlan is seven days starting on a Monday
type WeekPlan struct {
	WeekStart string    `json:"week_start"`
	WeekEnd   string    `json:"week_end"`
	Days      []DayPlan `json:"days"`
}

// DayNutrition sums the planned recipes of a day. Recipe nutrition is per
// serving and each entry counts its own servings.
type DayNutrition struct {
	Date      string            `json:"date"`
	Meals     int               `json:"meals"`
	Totals    nutrition.Macros  `json:"totals"`
	Target    *nutrition.Macros `json:"target"`
	Remaining *nutrition.Macros `json:"remaining"`
}

// MealPlanService manages the weekly planner
type MealPlanService struct {
	db       *gorm.DB
	shopping *ShoppingService
	profiles *ProfileService
	log      *zap.Logger
	now      func() time.Time
}

var _ IMealPlanService = (*MealPlanService)(nil)

func NewMealPlanService(db *gorm.DB, shopping *ShoppingService, profiles *ProfileService, log *zap.Logger) *MealPlanService {
	return &MealPlanService{
		db:       db,
		shopping: shopping,
		profiles: profiles,
		log:      logger.OrNop(log).Named("mealplan"),
		now:      time.Now,
	}
}

// WeekBounds returns the Monday of the week containing weekStart (today when
// empty) and the Sunday after it
func WeekBounds(weekStart string, now time.Time) (time.Time, time.Time, error) {
	day := now
	if weekStart != "" {
		d, err := time.Parse(types.DateLayout, weekStart)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("week_start must be YYYY-MM-DD")
		}
		day = d
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6), nil
}

// Week returns the plan for the seven days from the week's Monday
func (s *MealPlanService) Week(ctx context.Context, userID uuid.UUID, weekStart string) (*WeekPlan, error) {
	start, end, err := WeekBounds(weekStart, s.now())
	if err != nil {
		return nil, err
	}
	entries, err := s.entriesBetween(ctx, userID, start, end, true)
	if err != nil {
		return nil, err
	}

	plan := &WeekPlan{
		WeekStart: start.Format(types.DateLayout),
		WeekEnd:   end.Format(types.DateLayout),
		Days:      make([]DayPlan, 7),
	}
	index := make(map[string]int, 7)
	for i := range plan.Days {
		date := start.AddDate(0, 0, i).Format(types.DateLayout)
		plan.Days[i] = DayPlan{Date: date, Entries: []models.MealPlanEntry{}}
		index[date] = i
	}
	for _, e := range entries {
		if i, ok := index[e.PlannedOn]; ok {
			plan.Days[i].Entries = append(plan.Days[i].Entries, e)
		}
	}
	for i := range plan.Days {
		sortByMeal(plan.Days[i].Entries)
	}
	return plan, nil
}

func (s *MealPlanService) entriesBetween(ctx context.Context, userID uuid.UUID, start, end time.Time, withRecipes bool) ([]models.MealPlanEntry, error) {
	q := s.db.WithContext(ctx).
		Where("profile_id = ? AND planned_on BETWEEN ? AND ?", userID,
			start.Format(types.DateLayout), end.Format(types.DateLayout)).
		Order("planned_on")
	if withRecipes {
		q = q.Preload("Recipe")
	}
	var entries []models.MealPlanEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load meal plan", err)
	}
	return entries, nil
}

func sortByMeal(entries []models.MealPlanEntry) {
	rank := make(map[string]int, len(models.MealTypes))
	for i, m := range models.MealTypes {
		rank[m] = i
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return rank[entries[i].MealType] < rank[entries[j].MealType]
	})
}

// Upsert puts a recipe into a day's meal slot, replacing whatever was there
func (s *MealPlanService) Upsert(ctx context.Context, userID uuid.UUID, req *types.MealPlanEntryRequest) (*models.MealPlanEntry, error) {
	if _, err := time.Parse(types.DateLayout, req.Date); err != nil {
		return nil, apperrors.NewValidationError("date must be YYYY-MM-DD")
	}
	if !isMealType(req.MealType) {
		return nil, apperrors.NewValidationError("meal_type must be breakfast, lunch, dinner or snack")
	}

	var recipe models.Recipe
	err := s.db.WithContext(ctx).Where("id = ? AND profile_id = ?", req.RecipeID, userID).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewRecipeNotFoundError(req.RecipeID.String())
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("load recipe", err)
	}

	servings := req.Servings
	if servings <= 0 {
		servings = 1
	}
	entry := &models.MealPlanEntry{
		ProfileID: userID,
		PlannedOn: req.Date,
		MealType:  req.MealType,
		RecipeID:  recipe.ID,
		Servings:  servings,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}, {Name: "planned_on"}, {Name: "meal_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"recipe_id", "servings", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("save meal plan entry", err)
	}

	// on conflict the row keeps its original id
	var saved models.MealPlanEntry
	err = s.db.WithContext(ctx).Preload("Recipe").
		Where("profile_id = ? AND planned_on = ? AND meal_type = ?", userID, req.Date, req.MealType).
		First(&saved).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("load meal plan entry", err)
	}
	return &saved, nil
}

func isMealType(m string) bool {
	for _, t := range models.MealTypes {
		if t == m {
			return true
		}
	}
	return false
}

func (s *MealPlanService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND profile_id = ?", id, userID).Delete(&models.MealPlanEntry{})
	if res.Error != nil {
		return apperrors.NewDatabaseError("delete meal plan entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("Meal plan entry")
	}
	return nil
}

// AddWeekToShoppingList adds the week's ingredients scaled to each entry's
// servings, skipping what the pantry covers
func (s *MealPlanService) AddWeekToShoppingList(ctx context.Context, userID uuid.UUID, weekStart string) ([]models.ShoppingListItem, error) {
	start, end, err := WeekBounds(weekStart, s.now())
	if err != nil {
		return nil, err
	}
	entries, err := s.entriesBetween(ctx, userID, start, end, true)
	if err != nil {
		return nil, err
	}

	scaled := make([]scaledRecipe, 0, len(entries))
	for _, e := range entries {
		if e.Recipe == nil {
			continue
		}
		base := e.Recipe.Servings
		if base <= 0 {
			base = 1
		}
		scaled = append(scaled, scaledRecipe{recipe: e.Recipe, factor: float64(e.Servings) / float64(base)})
	}
	if len(scaled) == 0 {
		return []models.ShoppingListItem{}, nil
	}
	return s.shopping.addIngredients(ctx, userID, scaled)
}

// DayNutrition totals the day's planned meals against the user's calorie target
func (s *MealPlanService) DayNutrition(ctx context.Context, userID uuid.UUID, date string) (*DayNutrition, error) {
	day := s.now()
	if date != "" {
		d, err := time.Parse(types.DateLayout, date)
		if err != nil {
			return nil, apperrors.NewValidationError("date must be YYYY-MM-DD")
		}
		day = d
	}
	entries, err := s.entriesBetween(ctx, userID, day, day, true)
	if err != nil {
		return nil, err
	}

	var cal, protein, carbs, fat float64
	for _, e := range entries {
		if e.Recipe == nil {
			continue
		}
		n := float64(e.Servings)
		cal += e.Recipe.Calories * n
		protein += e.Recipe.ProteinG * n
		carbs += e.Recipe.CarbsG * n
		fat += e.Recipe.FatG * n
	}
	out := &DayNutrition{
		Date:  day.Format(types.DateLayout),
		Meals: len(entries),
		Totals: nutrition.Macros{
			Calories: int(math.Round(cal)),
			ProteinG: int(math.Round(protein)),
			CarbsG:   int(math.Round(carbs)),
			FatG:     int(math.Round(fat)),
		},
	}

	goals, err := s.profiles.NutritionGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target := dailyTarget(goals); target != nil {
		out.Target = target
		out.Remaining = &nutrition.Macros{
			Calories: target.Calories - out.Totals.Calories,
			ProteinG: target.ProteinG - out.Totals.ProteinG,
			CarbsG:   target.CarbsG - out.Totals.CarbsG,
			FatG:     target.FatG - out.Totals.FatG,
		}
	}
	return out, nil
}

// dailyTarget prefers the user's own calorie target; macros then follow the
// calculator's split of that figure
func dailyTarget(g *NutritionGoals) *nutrition.Macros {
	if g.DailyCalorieTarget > 0 {
		m := nutrition.SplitCalories(g.DailyCalorieTarget)
		return &m
	}
	if g.Goals != nil {
		m := g.Goals.Macros
		return &m
	}
	return nil
}
