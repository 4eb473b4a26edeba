package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// MealPlanHandler serves the weekly planner
type MealPlanHandler struct {
	mealPlanService service.IMealPlanService
}

func NewMealPlanHandler(mealPlanService service.IMealPlanService) *MealPlanHandler {
	return &MealPlanHandler{mealPlanService: mealPlanService}
}

func (h *MealPlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	plan := router.Group("/meal-plan")
	{
		plan.GET("", h.Week)
		plan.PUT("", h.Upsert)
		plan.DELETE("/:id", h.Delete)
		plan.POST("/shopping-list", h.AddToShoppingList)
		plan.GET("/nutrition", h.DayNutrition)
	}
}

type weekQuery struct {
	WeekStart string `form:"week_start" binding:"omitempty,datetime=2006-01-02"`
}

type dayQuery struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// Week returns seven days starting on the Monday of week_start, or of the
// current week when it is omitted
func (h *MealPlanHandler) Week(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q weekQuery
	if !bindQuery(c, &q) {
		return
	}
	week, err := h.mealPlanService.Week(c.Request.Context(), userID, q.WeekStart)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

// Upsert places a recipe in a slot; an occupied slot is replaced
func (h *MealPlanHandler) Upsert(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.MealPlanEntryRequest
	if !bind(c, &req) {
		return
	}
	entry, err := h.mealPlanService.Upsert(c.Request.Context(), userID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *MealPlanHandler) Delete(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}
	if err := h.mealPlanService.Delete(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MealPlanHandler) AddToShoppingList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q weekQuery
	if !bindQuery(c, &q) {
		return
	}
	items, err := h.mealPlanService.AddWeekToShoppingList(c.Request.Context(), userID, q.WeekStart)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *MealPlanHandler) DayNutrition(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q dayQuery
	if !bindQuery(c, &q) {
		return
	}
	day, err := h.mealPlanService.DayNutrition(c.Request.Context(), userID, q.Date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}
