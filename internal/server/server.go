package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/config"
	"github.com/pageza/alchemorsel-mobile/backend/internal/api"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mobile/backend/internal/router"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/statestore"
)

// Deps are the connections the server is built on
type Deps struct {
	DB    *gorm.DB
	Redis redis.Cmdable
	// Images may be nil; image uploads then fail with 502
	Images    service.ImageStore
	Providers service.ProviderRegistry
}

// Server represents the HTTP server
type Server struct {
	router      *gin.Engine
	http        *http.Server
	log         *zap.Logger
	authLimiter *middleware.IPRateLimiter
}

// New wires services, handlers and routes
func New(cfg *config.Config, deps Deps, log *zap.Logger) (*Server, error) {
	log = logger.OrNop(log)
	if deps.DB == nil || deps.Redis == nil || deps.Providers == nil {
		return nil, errors.New("server needs a database, redis and LLM providers")
	}
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	state := statestore.New(deps.Redis, log)
	authService := service.NewAuthService(deps.DB, cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime, log)
	profileService := service.NewProfileService(deps.DB, log)
	recipeService := service.NewRecipeService(deps.DB, deps.Images, log)
	pantryService := service.NewPantryService(deps.DB, log)
	shoppingService := service.NewShoppingService(deps.DB, log)
	mealPlanService := service.NewMealPlanService(deps.DB, shoppingService, profileService, log)
	generationService := service.NewGenerationService(deps.Providers, recipeService, profileService, pantryService, state, log)
	stateService := service.NewClientStateService(state, profileService, deps.DB, log)

	var maxImage int64
	if deps.Images != nil {
		maxImage = deps.Images.MaxBytes()
	}

	generationLimiter := middleware.NewGenerationRateLimiter(deps.Redis, cfg.RateLimit.GenerationsPerHour, log)
	modificationLimiter := middleware.NewModificationRateLimiter(deps.Redis, cfg.RateLimit.ModificationsPerHour, log)

	handlers := router.Handlers{
		Auth:     api.NewAuthHandler(authService),
		Profile:  api.NewProfileHandler(profileService),
		Tools:    api.NewToolsHandler(),
		State:    api.NewStateHandler(stateService),
		Recipe:   api.NewRecipeHandler(recipeService, maxImage),
		AI:       api.NewAIHandler(generationService, generationLimiter, modificationLimiter),
		Pantry:   api.NewPantryHandler(pantryService),
		Shopping: api.NewShoppingHandler(shoppingService),
		MealPlan: api.NewMealPlanHandler(mealPlanService),
		Health:   api.NewHealthHandler(deps.DB, deps.Redis),
	}

	authLimiter := NewAuthLimiter(cfg.RateLimit)
	engine, err := router.SetupRouter(handlers, authService, router.Options{
		Log:            log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		AuthLimiter:    authLimiter,
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		router: engine,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.Server.WriteTimeout,
		},
		log:         log.Named("server"),
		authLimiter: authLimiter,
	}, nil
}

// NewAuthLimiter returns nil when the per-IP auth limit is turned off
func NewAuthLimiter(cfg config.RateLimitConfig) *middleware.IPRateLimiter {
	if cfg.AuthRequestsPerSecond <= 0 {
		return nil
	}
	return middleware.NewIPRateLimiter(cfg.AuthRequestsPerSecond, cfg.AuthBurst)
}

// Handler exposes the routes, mainly for tests
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	if s.authLimiter != nil {
		s.authLimiter.StartCleanup(ctx, 10*time.Minute)
	}

	s.log.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down server")
	return s.http.Shutdown(ctx)
}
