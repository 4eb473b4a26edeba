package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/llm"
	"github.com/pageza/alchemorsel-mobile/backend/internal/nutrition"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// ToolsHandler exposes the stateless calculators the profile editors use
type ToolsHandler struct{}

func NewToolsHandler() *ToolsHandler { return &ToolsHandler{} }

func (h *ToolsHandler) RegisterRoutes(router *gin.RouterGroup) {
	tools := router.Group("/tools")
	{
		tools.POST("/nutrition-goals", h.NutritionGoals)
		tools.GET("/convert", h.Convert)
	}
	router.GET("/ai/quick-filters", h.QuickFilters)
}

// NutritionGoals runs the calculator on explicit inputs
func (h *ToolsHandler) NutritionGoals(c *gin.Context) {
	var req types.NutritionGoalsRequest
	if !bind(c, &req) {
		return
	}

	goals := nutrition.CalculateGoals(nutrition.Inputs{
		WeightKg:      req.WeightKg,
		HeightCm:      req.HeightCm,
		Age:           req.Age,
		Gender:        req.Gender,
		ActivityLevel: req.ActivityLevel,
		Goal:          req.Goal,
	})
	if goals == nil {
		fail(c, apperrors.NewValidationError("inputs are incomplete"))
		return
	}

	meals := req.MealsPerDay
	if meals == 0 {
		meals = service.MealsPerDay
	}
	c.JSON(http.StatusOK, gin.H{
		"goals":    goals,
		"per_meal": nutrition.PerMealTargets(*goals, meals),
	})
}

type convertQuery struct {
	From   string  `form:"from" binding:"required,oneof=cm ft_in kg lbs"`
	Value  float64 `form:"value" binding:"gte=0,lte=1000"`
	Feet   int     `form:"feet" binding:"gte=0,lte=9"`
	Inches int     `form:"inches" binding:"gte=0,lte=11"`
}

// Convert translates between metric and imperial height and weight.
// ft_in reads feet and inches; the others read value.
func (h *ToolsHandler) Convert(c *gin.Context) {
	var q convertQuery
	if !bindQuery(c, &q) {
		return
	}

	switch q.From {
	case "cm":
		feet, inches := nutrition.CmToFeetInches(q.Value)
		c.JSON(http.StatusOK, gin.H{"cm": q.Value, "feet": feet, "inches": inches})
	case "ft_in":
		c.JSON(http.StatusOK, gin.H{"feet": q.Feet, "inches": q.Inches, "cm": nutrition.FeetInchesToCm(q.Feet, q.Inches)})
	case "kg":
		c.JSON(http.StatusOK, gin.H{"kg": q.Value, "lbs": nutrition.KgToLbs(q.Value)})
	case "lbs":
		c.JSON(http.StatusOK, gin.H{"lbs": q.Value, "kg": nutrition.LbsToKg(q.Value)})
	}
}

// QuickFilters lists the predefined generation tags
func (h *ToolsHandler) QuickFilters(c *gin.Context) {
	names := llm.QuickFilterNames()
	filters := make([]gin.H, 0, len(names))
	for _, n := range names {
		filters = append(filters, gin.H{"name": n, "description": llm.QuickFilters[n]})
	}
	c.JSON(http.StatusOK, gin.H{"quick_filters": filters})
}
