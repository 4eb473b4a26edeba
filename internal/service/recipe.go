package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/recipeschema"
	"github.com/pageza/alchemorsel-mobile/backend/internal/storage"
)

// DefaultSimilarLimit is how many similar recipes are returned by default
const DefaultSimilarLimit = 5

// RecipeFilter narrows the recipe list
type RecipeFilter struct {
	Query         string
	FavoritesOnly bool
	MealType      string
}

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
	log    *zap.Logger
}

var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService; images may be nil when no bucket
// is configured
func NewRecipeService(db *gorm.DB, images ImageStore, log *zap.Logger) *RecipeService {
	return &RecipeService{db: db, images: images, log: logger.OrNop(log).Named("recipe")}
}

// likeEscaper makes a search term match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns the user's recipes, newest first. The query matches title,
// description or cuisine as a plain substring.
func (s *RecipeService) List(ctx context.Context, userID uuid.UUID, filter RecipeFilter) ([]models.Recipe, error) {
	q := s.db.WithContext(ctx).Where("profile_id = ?", userID)
	if filter.FavoritesOnly {
		q = q.Where("is_favorite = ?", true)
	}
	if mt := strings.ToLower(strings.TrimSpace(filter.MealType)); mt != "" {
		q = q.Where("meal_type = ?", mt)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Query)); term != "" {
		like := "%" + likeEscaper.Replace(term) + "%"
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(cuisine) LIKE ? ESCAPE '\'`, like, like, like)
	}

	var recipes []models.Recipe
	if err := q.Order("updated_at DESC").Find(&recipes).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list recipes", err)
	}
	for i := range recipes {
		s.withImageURL(ctx, &recipes[i])
	}
	return recipes, nil
}

// Get returns one of the user's recipes
func (s *RecipeService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	r, err := s.load(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	s.withImageURL(ctx, r)
	return r, nil
}

func (s *RecipeService) load(ctx context.Context, db *gorm.DB, userID, id uuid.UUID) (*models.Recipe, error) {
	var r models.Recipe
	err := db.WithContext(ctx).Where("id = ? AND profile_id = ?", id, userID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewRecipeNotFoundError(id.String())
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("load recipe", err)
	}
	return &r, nil
}

// CreateManual validates a user-entered recipe with the same schema as generated ones
func (s *RecipeService) CreateManual(ctx context.Context, userID uuid.UUID, raw []byte) (*models.Recipe, error) {
	rec, err := parseManual(raw)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, userID, rec, models.SourceManual, "")
}

// Create stores a validated recipe
func (s *RecipeService) Create(ctx context.Context, userID uuid.UUID, rec *recipeschema.Recipe, source, provider string) (*models.Recipe, error) {
	r := &models.Recipe{ProfileID: userID, Source: source, Provider: provider}
	r.Apply(rec)
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create recipe", err)
	}
	s.log.Info("recipe created",
		zap.String("recipe_id", r.ID.String()),
		zap.String("source", source),
		zap.String("provider", provider))
	return r, nil
}

// UpdateManual replaces the recipe's content with a user-edited version
func (s *RecipeService) UpdateManual(ctx context.Context, userID, id uuid.UUID, raw []byte) (*models.Recipe, error) {
	rec, err := parseManual(raw)
	if err != nil {
		return nil, err
	}
	return s.Replace(ctx, userID, id, rec, "")
}

// Replace overwrites the recipe's content, keeping image and favorite state.
// A non-empty provider marks the recipe as AI-modified.
func (s *RecipeService) Replace(ctx context.Context, userID, id uuid.UUID, rec *recipeschema.Recipe, provider string) (*models.Recipe, error) {
	r, err := s.load(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	r.Apply(rec)
	if provider != "" {
		r.Source = models.SourceAI
		r.Provider = provider
	}
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return nil, apperrors.NewDatabaseError("update recipe", err)
	}
	s.withImageURL(ctx, r)
	return r, nil
}

func parseManual(raw []byte) (*recipeschema.Recipe, error) {
	rec, err := recipeschema.Parse(string(raw))
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return rec, nil
}

// Delete removes the recipe, its plan entries and its image
func (s *RecipeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	var imagePath string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.load(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		imagePath = r.ImagePath
		if err := tx.Where("recipe_id = ?", id).Delete(&models.MealPlanEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ShoppingListItem{}).Where("recipe_id = ?", id).Update("recipe_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(r).Error
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return err
		}
		return apperrors.NewDatabaseError("delete recipe", err)
	}

	if imagePath != "" && s.images != nil {
		// the row is gone either way; an orphaned object is only logged
		if err := s.images.Delete(ctx, imagePath); err != nil {
			s.log.Warn("failed to delete recipe image", zap.String("key", imagePath), zap.Error(err))
		}
	}
	return nil
}

// ToggleFavorite flips the favorite flag
func (s *RecipeService) ToggleFavorite(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	r, err := s.load(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	r.IsFavorite = !r.IsFavorite
	if err := s.db.WithContext(ctx).Model(r).UpdateColumn("is_favorite", r.IsFavorite).Error; err != nil {
		return nil, apperrors.NewDatabaseError("update favorite", err)
	}
	s.withImageURL(ctx, r)
	return r, nil
}

// Similar returns the user's other recipes closest to this one by embedding
func (s *RecipeService) Similar(ctx context.Context, userID, id uuid.UUID, limit int) ([]models.Recipe, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	target, err := s.load(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	vec := models.RecipeEmbedding(target)

	var recipes []models.Recipe
	q := s.db.WithContext(ctx).Where("profile_id = ? AND id <> ?", userID, id)
	if s.db.Dialector.Name() == "postgres" {
		err = q.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{pgvector.NewVector(vec)}},
		}).Limit(limit).Find(&recipes).Error
	} else {
		// no vector operators outside postgres; rank in process
		err = q.Find(&recipes).Error
		if err == nil {
			recipes = rankBySimilarity(recipes, vec, limit)
		}
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("find similar recipes", err)
	}
	for i := range recipes {
		s.withImageURL(ctx, &recipes[i])
	}
	return recipes, nil
}

func rankBySimilarity(recipes []models.Recipe, vec []float32, limit int) []models.Recipe {
	scores := make(map[uuid.UUID]float64, len(recipes))
	for _, r := range recipes {
		scores[r.ID] = models.Cosine(vec, r.Embedding.Slice())
	}
	sort.SliceStable(recipes, func(i, j int) bool {
		return scores[recipes[i].ID] > scores[recipes[j].ID]
	})
	if len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes
}

// SetImage uploads a new image for the recipe, replacing the old one
func (s *RecipeService) SetImage(ctx context.Context, userID, id uuid.UUID, contentType string, body io.Reader, size int64) (*models.Recipe, error) {
	if s.images == nil {
		return nil, apperrors.NewExternalServiceError("image storage", errors.New("not configured"))
	}
	r, err := s.load(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}

	key, err := s.images.Upload(ctx, userID, id, contentType, body, size)
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return nil, apperrors.NewValidationError("image must be a JPEG, PNG or WebP file")
	case errors.Is(err, storage.ErrTooLarge):
		return nil, apperrors.NewPayloadTooLargeError(s.images.MaxBytes())
	case err != nil:
		return nil, apperrors.NewExternalServiceError("image storage", err)
	}

	old := r.ImagePath
	r.ImagePath = key
	if err := s.db.WithContext(ctx).Model(r).UpdateColumn("image_path", key).Error; err != nil {
		return nil, apperrors.NewDatabaseError("save image path", err)
	}
	if old != "" && old != key {
		if err := s.images.Delete(ctx, old); err != nil {
			s.log.Warn("failed to delete previous image", zap.String("key", old), zap.Error(err))
		}
	}
	s.withImageURL(ctx, r)
	return r, nil
}

// RemoveImage deletes the recipe's image
func (s *RecipeService) RemoveImage(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	r, err := s.load(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	if r.ImagePath == "" {
		return r, nil
	}
	if s.images != nil {
		if err := s.images.Delete(ctx, r.ImagePath); err != nil {
			return nil, apperrors.NewExternalServiceError("image storage", err)
		}
	}
	r.ImagePath = ""
	if err := s.db.WithContext(ctx).Model(r).UpdateColumn("image_path", "").Error; err != nil {
		return nil, apperrors.NewDatabaseError("clear image path", err)
	}
	return r, nil
}

func (s *RecipeService) withImageURL(ctx context.Context, r *models.Recipe) {
	if r.ImagePath == "" || s.images == nil {
		return
	}
	url, err := s.images.URL(ctx, r.ImagePath)
	if err != nil {
		s.log.Warn("failed to build image url", zap.String("key", r.ImagePath), zap.Error(err))
		return
	}
	r.ImageURL = url
}
