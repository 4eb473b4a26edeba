package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// PantryService manages what the user has at home
type PantryService struct {
	db  *gorm.DB
	log *zap.Logger
}

var _ IPantryService = (*PantryService)(nil)

func NewPantryService(db *gorm.DB, log *zap.Logger) *PantryService {
	return &PantryService{db: db, log: logger.OrNop(log).Named("pantry")}
}

// List returns pantry items, soonest expiry first, undated items last
func (s *PantryService) List(ctx context.Context, userID uuid.UUID) ([]models.PantryItem, error) {
	items := []models.PantryItem{}
	err := s.db.WithContext(ctx).
		Where("profile_id = ?", userID).
		Order("CASE WHEN expires_on IS NULL THEN 1 ELSE 0 END, expires_on, name").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("list pantry", err)
	}
	return items, nil
}

// Names returns the lowercased item names, used for prompts and list filtering
func (s *PantryService) Names(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&models.PantryItem{}).
		Where("profile_id = ?", userID).
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("list pantry", err)
	}
	return names, nil
}

func (s *PantryService) Create(ctx context.Context, userID uuid.UUID, req *types.PantryItemRequest) (*models.PantryItem, error) {
	item := &models.PantryItem{ProfileID: userID}
	if err := applyPantry(item, req); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, apperrors.NewDatabaseError("create pantry item", err)
	}
	return item, nil
}

func (s *PantryService) Update(ctx context.Context, userID, id uuid.UUID, req *types.PantryItemRequest) (*models.PantryItem, error) {
	item, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyPantry(item, req); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, apperrors.NewDatabaseError("update pantry item", err)
	}
	return item, nil
}

func (s *PantryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND profile_id = ?", id, userID).Delete(&models.PantryItem{})
	if res.Error != nil {
		return apperrors.NewDatabaseError("delete pantry item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("Pantry item")
	}
	return nil
}

func (s *PantryService) load(ctx context.Context, userID, id uuid.UUID) (*models.PantryItem, error) {
	var item models.PantryItem
	err := s.db.WithContext(ctx).Where("id = ? AND profile_id = ?", id, userID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("Pantry item")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("load pantry item", err)
	}
	return &item, nil
}

func applyPantry(item *models.PantryItem, req *types.PantryItemRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperrors.NewValidationError("name is required")
	}
	item.Name = name
	item.Quantity = req.Quantity
	item.Unit = strings.TrimSpace(req.Unit)
	item.Category = strings.TrimSpace(req.Category)
	item.ExpiresOn = nil
	if req.ExpiresOn != "" {
		if _, err := time.Parse(types.DateLayout, req.ExpiresOn); err != nil {
			return apperrors.NewValidationError("expires_on must be YYYY-MM-DD")
		}
		d := req.ExpiresOn
		item.ExpiresOn = &d
	}
	return nil
}

// pantrySet indexes pantry names for case-insensitive lookups
type pantrySet map[string]bool

func newPantrySet(names []string) pantrySet {
	set := make(pantrySet, len(names))
	for _, n := range names {
		set[normalizeItem(n)] = true
	}
	return set
}

// Has reports whether the pantry covers an ingredient. A pantry "rice" covers
// "basmati rice" but not the other way round.
func (p pantrySet) Has(name string) bool {
	n := normalizeItem(name)
	if p[n] {
		return true
	}
	for have := range p {
		if have != "" && strings.HasSuffix(n, " "+have) {
			return true
		}
	}
	return false
}

func normalizeItem(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
