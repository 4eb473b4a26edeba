package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// ShoppingHandler serves the shopping list
type ShoppingHandler struct {
	shoppingService service.IShoppingService
}

func NewShoppingHandler(shoppingService service.IShoppingService) *ShoppingHandler {
	return &ShoppingHandler{shoppingService: shoppingService}
}

func (h *ShoppingHandler) RegisterRoutes(router *gin.RouterGroup) {
	list := router.Group("/shopping-list")
	{
		list.GET("", h.List)
		list.POST("", h.Create)
		list.DELETE("/checked", h.ClearChecked)
		list.POST("/checked/to-pantry", h.MoveCheckedToPantry)
		list.POST("/from-recipe/:id", h.AddFromRecipe)
		list.PUT("/:id", h.Update)
		list.DELETE("/:id", h.Delete)
		list.POST("/:id/toggle", h.Toggle)
	}
}

func (h *ShoppingHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.shoppingService.List(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Create adds an item, merging into an unchecked item with the same name and unit
func (h *ShoppingHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ShoppingItemRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.shoppingService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ShoppingHandler) Update(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}
	var req types.ShoppingItemRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.shoppingService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ShoppingHandler) Delete(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}
	if err := h.shoppingService.Delete(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShoppingHandler) Toggle(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}
	item, err := h.shoppingService.Toggle(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ShoppingHandler) ClearChecked(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.shoppingService.ClearChecked(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

// AddFromRecipe adds the recipe's ingredients that the pantry does not cover
func (h *ShoppingHandler) AddFromRecipe(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}
	items, err := h.shoppingService.AddFromRecipe(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ShoppingHandler) MoveCheckedToPantry(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.shoppingService.MoveCheckedToPantry(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": n})
}
