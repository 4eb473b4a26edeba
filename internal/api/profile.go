package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// ProfileHandler serves the profile and its three lists
type ProfileHandler struct {
	profileService service.IProfileService
}

func NewProfileHandler(profileService service.IProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.PUT("/restrictions", h.ReplaceRestrictions)
		profile.PUT("/equipment", h.ReplaceEquipment)
		profile.PUT("/favorite-ingredients", h.ReplaceFavoriteIngredients)
		profile.GET("/completion", h.GetCompletion)
		profile.GET("/nutrition-goals", h.GetNutritionGoals)
	}
}

// GetProfile returns the bundle: profile, lists and completion
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	bundle, err := h.profileService.GetBundle(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.UpdateProfileRequest
	if !bind(c, &req) {
		return
	}

	if _, err := h.profileService.UpdateProfile(c.Request.Context(), userID, &req); err != nil {
		fail(c, err)
		return
	}
	h.GetProfile(c)
}

// The list endpoints replace the whole list; an empty list clears it.

func (h *ProfileHandler) ReplaceRestrictions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ReplaceRestrictionsRequest
	if !bind(c, &req) {
		return
	}

	rows, err := h.profileService.ReplaceRestrictions(c.Request.Context(), userID, req.Restrictions)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restrictions": rows})
}

func (h *ProfileHandler) ReplaceEquipment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ReplaceNamesRequest
	if !bind(c, &req) {
		return
	}

	rows, err := h.profileService.ReplaceEquipment(c.Request.Context(), userID, req.Names)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"equipment": rows})
}

func (h *ProfileHandler) ReplaceFavoriteIngredients(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ReplaceNamesRequest
	if !bind(c, &req) {
		return
	}

	rows, err := h.profileService.ReplaceFavoriteIngredients(c.Request.Context(), userID, req.Names)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite_ingredients": rows})
}

func (h *ProfileHandler) GetCompletion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	res, err := h.profileService.Completion(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetNutritionGoals runs the calculator on the stored profile. goals is null
// while an input is missing.
func (h *ProfileHandler) GetNutritionGoals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	goals, err := h.profileService.NutritionGoals(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}
