package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// PantryHandler serves the pantry inventory
type PantryHandler struct {
	pantryService service.IPantryService
}

func NewPantryHandler(pantryService service.IPantryService) *PantryHandler {
	return &PantryHandler{pantryService: pantryService}
}

func (h *PantryHandler) RegisterRoutes(router *gin.RouterGroup) {
	pantry := router.Group("/pantry")
	{
		pantry.GET("", h.List)
		pantry.POST("", h.Create)
		pantry.PUT("/:id", h.Update)
		pantry.DELETE("/:id", h.Delete)
	}
}

func (h *PantryHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.pantryService.List(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *PantryHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.PantryItemRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.pantryService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *PantryHandler) Update(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}
	var req types.PantryItemRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.pantryService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *PantryHandler) Delete(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}
	if err := h.pantryService.Delete(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
