package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/internal/database"
)

// Version is reported by the health endpoint
var Version = "dev"

// HealthHandler reports database and Redis reachability
type HealthHandler struct {
	db    *gorm.DB
	redis redis.Cmdable
}

func NewHealthHandler(db *gorm.DB, rdb redis.Cmdable) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb}
}

// HealthCheck is 200 while the database answers; a Redis outage only marks
// the status degraded.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	status, code := "healthy", http.StatusOK

	if h.db == nil || database.HealthCheck(ctx, h.db) != nil {
		checks["database"] = "down"
		status, code = "unhealthy", http.StatusServiceUnavailable
	} else {
		checks["database"] = "up"
	}

	switch {
	case h.redis == nil:
		checks["redis"] = "disabled"
	case h.redis.Ping(ctx).Err() != nil:
		checks["redis"] = "down"
		if code == http.StatusOK {
			status = "degraded"
		}
	default:
		checks["redis"] = "up"
	}

	c.JSON(code, gin.H{
		"status":  status,
		"version": Version,
		"checks":  checks,
	})
}
