package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// ShoppingService manages the shopping list. Adding an item whose name and unit
// match an unchecked entry increases that entry's quantity instead.
type ShoppingService struct {
	db  *gorm.DB
	log *zap.Logger
}

var _ IShoppingService = (*ShoppingService)(nil)

func NewShoppingService(db *gorm.DB, log *zap.Logger) *ShoppingService {
	return &ShoppingService{db: db, log: logger.OrNop(log).Named("shopping")}
}

// List returns unchecked items first, grouped by category
func (s *ShoppingService) List(ctx context.Context, userID uuid.UUID) ([]models.ShoppingListItem, error) {
	items := []models.ShoppingListItem{}
	err := s.db.WithContext(ctx).
		Where("profile_id = ?", userID).
		Order("checked, category, name").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("list shopping list", err)
	}
	return items, nil
}

func (s *ShoppingService) Create(ctx context.Context, userID uuid.UUID, req *types.ShoppingItemRequest) (*models.ShoppingListItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	in := models.ShoppingListItem{
		ProfileID: userID,
		Name:      name,
		Quantity:  req.Quantity,
		Unit:      strings.TrimSpace(req.Unit),
		Category:  strings.TrimSpace(req.Category),
	}

	var out []models.ShoppingListItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = mergeShopping(tx, userID, []models.ShoppingListItem{in})
		return err
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("add shopping item", err)
	}
	return &out[0], nil
}

func (s *ShoppingService) Update(ctx context.Context, userID, id uuid.UUID, req *types.ShoppingItemRequest) (*models.ShoppingListItem, error) {
	item, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	item.Name = name
	item.Quantity = req.Quantity
	item.Unit = strings.TrimSpace(req.Unit)
	item.Category = strings.TrimSpace(req.Category)
	if req.Checked != nil {
		item.Checked = *req.Checked
	}
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, apperrors.NewDatabaseError("update shopping item", err)
	}
	return item, nil
}

func (s *ShoppingService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND profile_id = ?", id, userID).Delete(&models.ShoppingListItem{})
	if res.Error != nil {
		return apperrors.NewDatabaseError("delete shopping item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("Shopping list item")
	}
	return nil
}

// Toggle flips the checked state
func (s *ShoppingService) Toggle(ctx context.Context, userID, id uuid.UUID) (*models.ShoppingListItem, error) {
	item, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	item.Checked = !item.Checked
	if err := s.db.WithContext(ctx).Model(item).UpdateColumn("checked", item.Checked).Error; err != nil {
		return nil, apperrors.NewDatabaseError("toggle shopping item", err)
	}
	return item, nil
}

// ClearChecked deletes every checked item and returns how many were removed
func (s *ShoppingService) ClearChecked(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("profile_id = ? AND checked = ?", userID, true).
		Delete(&models.ShoppingListItem{})
	if res.Error != nil {
		return 0, apperrors.NewDatabaseError("clear checked items", res.Error)
	}
	return res.RowsAffected, nil
}

// AddFromRecipe adds the recipe's ingredients that the pantry does not cover
func (s *ShoppingService) AddFromRecipe(ctx context.Context, userID, recipeID uuid.UUID) ([]models.ShoppingListItem, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Where("id = ? AND profile_id = ?", recipeID, userID).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewRecipeNotFoundError(recipeID.String())
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("load recipe", err)
	}
	return s.addIngredients(ctx, userID, []scaledRecipe{{recipe: &recipe, factor: 1}})
}

// scaledRecipe is a recipe whose quantities are multiplied by factor
type scaledRecipe struct {
	recipe *models.Recipe
	factor float64
}

func (s *ShoppingService) addIngredients(ctx context.Context, userID uuid.UUID, recipes []scaledRecipe) ([]models.ShoppingListItem, error) {
	var out []models.ShoppingListItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var names []string
		if err := tx.Model(&models.PantryItem{}).Where("profile_id = ?", userID).Pluck("name", &names).Error; err != nil {
			return err
		}
		pantry := newPantrySet(names)

		var add []models.ShoppingListItem
		for _, sr := range recipes {
			id := sr.recipe.ID
			for _, ing := range sr.recipe.Ingredients {
				if pantry.Has(ing.Name) {
					continue
				}
				add = append(add, models.ShoppingListItem{
					ProfileID: userID,
					Name:      ing.Name,
					Quantity:  roundQuantity(ing.Quantity * sr.factor),
					Unit:      ing.Unit,
					RecipeID:  &id,
				})
			}
		}
		if len(add) == 0 {
			return nil
		}
		var err error
		out, err = mergeShopping(tx, userID, add)
		return err
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("add ingredients to shopping list", err)
	}
	if out == nil {
		out = []models.ShoppingListItem{}
	}
	s.log.Debug("ingredients added to shopping list",
		zap.String("user_id", userID.String()),
		zap.Int("items", len(out)))
	return out, nil
}

// MoveCheckedToPantry moves checked items into the pantry, adding to a pantry
// item with the same name and unit, and returns how many items moved
func (s *ShoppingService) MoveCheckedToPantry(ctx context.Context, userID uuid.UUID) (int, error) {
	moved := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var checked []models.ShoppingListItem
		if err := tx.Where("profile_id = ? AND checked = ?", userID, true).Find(&checked).Error; err != nil {
			return err
		}
		if len(checked) == 0 {
			return nil
		}

		var pantry []models.PantryItem
		if err := tx.Where("profile_id = ?", userID).Find(&pantry).Error; err != nil {
			return err
		}
		byKey := make(map[string]*models.PantryItem, len(pantry))
		for i := range pantry {
			byKey[itemKey(pantry[i].Name, pantry[i].Unit)] = &pantry[i]
		}

		ids := make([]uuid.UUID, 0, len(checked))
		for _, c := range checked {
			ids = append(ids, c.ID)
			key := itemKey(c.Name, c.Unit)
			if p, ok := byKey[key]; ok {
				p.Quantity = roundQuantity(p.Quantity + c.Quantity)
				if err := tx.Model(p).UpdateColumn("quantity", p.Quantity).Error; err != nil {
					return err
				}
				continue
			}
			p := &models.PantryItem{
				ProfileID: userID,
				Name:      c.Name,
				Quantity:  c.Quantity,
				Unit:      c.Unit,
				Category:  c.Category,
			}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
			byKey[key] = p
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.ShoppingListItem{}).Error; err != nil {
			return err
		}
		moved = len(checked)
		return nil
	})
	if err != nil {
		return 0, apperrors.NewDatabaseError("move checked items to pantry", err)
	}
	return moved, nil
}

func (s *ShoppingService) load(ctx context.Context, userID, id uuid.UUID) (*models.ShoppingListItem, error) {
	var item models.ShoppingListItem
	err := s.db.WithContext(ctx).Where("id = ? AND profile_id = ?", id, userID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("Shopping list item")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("load shopping item", err)
	}
	return &item, nil
}

// mergeShopping adds items to the list inside tx. Items matching an unchecked
// entry (or an earlier item of the same batch) by name and unit are summed.
// The returned slice has one element per distinct resulting row.
func mergeShopping(tx *gorm.DB, userID uuid.UUID, items []models.ShoppingListItem) ([]models.ShoppingListItem, error) {
	var open []models.ShoppingListItem
	if err := tx.Where("profile_id = ? AND checked = ?", userID, false).Find(&open).Error; err != nil {
		return nil, err
	}
	byKey := make(map[string]*models.ShoppingListItem, len(open))
	for i := range open {
		byKey[itemKey(open[i].Name, open[i].Unit)] = &open[i]
	}

	var order []string
	touched := make(map[string]bool)
	for _, it := range items {
		key := itemKey(it.Name, it.Unit)
		if existing, ok := byKey[key]; ok {
			existing.Quantity = roundQuantity(existing.Quantity + it.Quantity)
			if existing.Category == "" {
				existing.Category = it.Category
			}
			if err := tx.Save(existing).Error; err != nil {
				return nil, err
			}
		} else {
			created := it
			if err := tx.Create(&created).Error; err != nil {
				return nil, err
			}
			byKey[key] = &created
		}
		if !touched[key] {
			touched[key] = true
			order = append(order, key)
		}
	}

	out := make([]models.ShoppingListItem, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out, nil
}

func itemKey(name, unit string) string {
	return normalizeItem(name) + "\x00" + strings.ToLower(strings.TrimSpace(unit))
}

// roundQuantity keeps two decimals so scaled quantities stay readable
func roundQuantity(q float64) float64 {
	return float64(int64(q*100+0.5)) / 100
}

