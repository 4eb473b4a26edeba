package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// StateHandler serves the client stores kept per user: display preferences,
// the onboarding wizard draft and the recipe search form.
type StateHandler struct {
	stateService service.IClientStateService
}

func NewStateHandler(stateService service.IClientStateService) *StateHandler {
	return &StateHandler{stateService: stateService}
}

func (h *StateHandler) RegisterRoutes(router *gin.RouterGroup) {
	state := router.Group("/state")
	{
		state.GET("/preferences", h.GetPreferences)
		state.PUT("/preferences", h.PutPreferences)

		state.GET("/onboarding", h.GetOnboarding)
		state.PUT("/onboarding", h.PutOnboarding)
		state.DELETE("/onboarding", h.DeleteOnboarding)
		state.POST("/onboarding/complete", h.CompleteOnboarding)

		state.GET("/recipe-form", h.GetRecipeForm)
		state.PUT("/recipe-form", h.PutRecipeForm)
		state.DELETE("/recipe-form", h.DeleteRecipeForm)
	}
}

func (h *StateHandler) GetPreferences(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	prefs, err := h.stateService.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *StateHandler) PutPreferences(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var prefs types.Preferences
	if !bind(c, &prefs) {
		return
	}
	if err := h.stateService.PutPreferences(c.Request.Context(), userID, &prefs); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *StateHandler) GetOnboarding(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	draft, err := h.stateService.GetOnboarding(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *StateHandler) PutOnboarding(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var draft types.OnboardingDraft
	if !bind(c, &draft) {
		return
	}
	if err := h.stateService.PutOnboarding(c.Request.Context(), userID, &draft); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *StateHandler) DeleteOnboarding(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.stateService.DeleteOnboarding(c.Request.Context(), userID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteOnboarding applies the saved draft and returns the resulting profile bundle
func (h *StateHandler) CompleteOnboarding(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bundle, err := h.stateService.CompleteOnboarding(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

func (h *StateHandler) GetRecipeForm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	form, err := h.stateService.GetRecipeForm(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *StateHandler) PutRecipeForm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var form types.RecipeSearchForm
	if !bind(c, &form) {
		return
	}
	if err := h.stateService.PutRecipeForm(c.Request.Context(), userID, &form); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *StateHandler) DeleteRecipeForm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.stateService.DeleteRecipeForm(c.Request.Context(), userID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
