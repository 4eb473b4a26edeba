package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mobile/backend/internal/api"
	"github.com/pageza/alchemorsel-mobile/backend/internal/metrics"
	"github.com/pageza/alchemorsel-mobile/backend/internal/middleware"
)

// Handlers are the route groups mounted under /api/v1
type Handlers struct {
	Auth     *api.AuthHandler
	Profile  *api.ProfileHandler
	Tools    *api.ToolsHandler
	State    *api.StateHandler
	Recipe   *api.RecipeHandler
	AI       *api.AIHandler
	Pantry   *api.PantryHandler
	Shopping *api.ShoppingHandler
	MealPlan *api.MealPlanHandler
	Health   *api.HealthHandler
}

// Options are the cross-cutting pieces of the router
type Options struct {
	Log            *zap.Logger
	AllowedOrigins []string
	// TrustedProxies are the proxies whose X-Forwarded-For is believed; nil trusts none
	TrustedProxies []string
	// AuthLimiter throttles /auth per client IP; nil disables it
	AuthLimiter *middleware.IPRateLimiter
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, validator middleware.TokenValidator, opts Options) (*gin.Engine, error) {
	router, err := newEngine(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}
	router.Use(
		middleware.RequestLogger(opts.Log),
		middleware.Recovery(opts.Log),
		middleware.CORS(opts.AllowedOrigins),
		middleware.ErrorHandler(opts.Log),
	)

	router.GET("/health", h.Health.HealthCheck)
	router.GET("/api/health", h.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	h.Auth.RegisterRoutes(v1, opts.AuthLimiter.Middleware())

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.Auth(validator))
	{
		h.Profile.RegisterRoutes(protected)
		h.Tools.RegisterRoutes(protected)
		h.State.RegisterRoutes(protected)
		h.Recipe.RegisterRoutes(protected)
		h.AI.RegisterRoutes(protected)
		h.Pantry.RegisterRoutes(protected)
		h.Shopping.RegisterRoutes(protected)
		h.MealPlan.RegisterRoutes(protected)
	}

	return router, nil
}

// newEngine creates a bare engine whose ClientIP only honours forwarding
// headers from the given proxies
func newEngine(trustedProxies []string) (*gin.Engine, error) {
	router := gin.New()
	if len(trustedProxies) == 0 {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	return router, nil
}
