package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/alchemorsel-mobile/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// AIHandler serves the chat assistant, recipe generation and modification,
// and the drafts they produce
type AIHandler struct {
	generationService   service.IGenerationService
	generationLimiter   *middleware.RateLimiter
	modificationLimiter *middleware.RateLimiter
}

// NewAIHandler creates the handler. Nil limiters disable rate limiting.
func NewAIHandler(generationService service.IGenerationService, generationLimiter, modificationLimiter *middleware.RateLimiter) *AIHandler {
	return &AIHandler{
		generationService:   generationService,
		generationLimiter:   generationLimiter,
		modificationLimiter: modificationLimiter,
	}
}

func (h *AIHandler) RegisterRoutes(router *gin.RouterGroup) {
	ai := router.Group("/ai")
	{
		ai.POST("/chat", h.Chat)
		ai.POST("/recipes/generate", h.generationLimiter.Middleware(), h.Generate)
		ai.GET("/drafts/:id", h.GetDraft)
		ai.DELETE("/drafts/:id", h.DeleteDraft)
		ai.POST("/drafts/:id/save", h.SaveDraft)
		ai.GET("/rate-limits", h.RateLimits)
	}
	router.POST("/recipes/:id/modify", h.modificationLimiter.Middleware(), h.Modify)
}

func (h *AIHandler) Chat(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ChatRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.generationService.Chat(c.Request.Context(), userID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Generate turns the search form into a draft recipe
func (h *AIHandler) Generate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var form types.RecipeSearchForm
	if !bind(c, &form) {
		return
	}

	draft, err := h.generationService.Generate(c.Request.Context(), userID, &form)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// Modify asks the model to change a saved recipe. The result is a draft; the
// recipe itself changes only when the draft is saved.
func (h *AIHandler) Modify(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}
	var req types.ModifyRecipeRequest
	if !bind(c, &req) {
		return
	}

	draft, err := h.generationService.Modify(c.Request.Context(), userID, id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (h *AIHandler) GetDraft(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}

	draft, err := h.generationService.GetDraft(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *AIHandler) DeleteDraft(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}

	if err := h.generationService.DeleteDraft(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveDraft persists the draft as a recipe, or updates the source recipe of a
// modification draft
func (h *AIHandler) SaveDraft(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}

	recipe, err := h.generationService.SaveDraft(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// RateLimits reports the caller's remaining generations and modifications.
// A disabled limiter or a Redis failure reports null.
func (h *AIHandler) RateLimits(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"generation":   usageOf(c, h.generationLimiter, userID),
		"modification": usageOf(c, h.modificationLimiter, userID),
	})
}

func usageOf(c *gin.Context, rl *middleware.RateLimiter, userID uuid.UUID) *middleware.Usage {
	if !rl.Enabled() {
		return nil
	}
	usage, err := rl.Usage(c.Request.Context(), userID.String())
	if err != nil {
		return nil
	}
	return usage
}
