package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
)

// RecipeHandler serves the saved recipe collection
type RecipeHandler struct {
	recipeService service.IRecipeService
	maxImageBytes int64
}

// NewRecipeHandler creates the handler; maxImageBytes <= 0 means DefaultMaxImageBytes
func NewRecipeHandler(recipeService service.IRecipeService, maxImageBytes int64) *RecipeHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &RecipeHandler{recipeService: recipeService, maxImageBytes: maxImageBytes}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.CreateRecipe)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/favorite", h.ToggleFavorite)
		recipes.GET("/:id/similar", h.SimilarRecipes)
		recipes.PUT("/:id/image", h.UploadImage)
		recipes.DELETE("/:id/image", h.DeleteImage)
	}
}

type listRecipesQuery struct {
	Query     string `form:"q" binding:"max=200"`
	Favorites bool   `form:"favorites"`
	MealType  string `form:"meal_type" binding:"max=20"`
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q listRecipesQuery
	if !bindQuery(c, &q) {
		return
	}

	recipes, err := h.recipeService.List(c.Request.Context(), userID, service.RecipeFilter{
		Query:         q.Query,
		FavoritesOnly: q.Favorites,
		MealType:      q.MealType,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe stores a manually entered recipe. The body goes through the same
// schema validation as generated recipes.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.CreateManual(c.Request.Context(), userID, raw)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.UpdateManual(c.Request.Context(), userID, id, raw)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.ToggleFavorite(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			fail(c, apperrors.NewValidationError("limit must be between 1 and 50"))
			return
		}
		limit = n
	}

	recipes, err := h.recipeService.Similar(c.Request.Context(), userID, id, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func readBody(c *gin.Context) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxJSONBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, apperrors.NewPayloadTooLargeError(MaxJSONBody))
		} else {
			fail(c, apperrors.NewBadRequestError("failed to read request body"))
		}
		return nil, false
	}
	if len(raw) == 0 {
		fail(c, apperrors.NewValidationError("request body is empty"))
		return nil, false
	}
	return raw, true
}
