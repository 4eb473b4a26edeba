package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window; <= 0 disables the limiter
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter is a fixed-window counter per user kept in Redis
type RateLimiter struct {
	redis  redis.Cmdable
	config RateLimitConfig
	log    *zap.Logger
	now    func() time.Time
}

// Usage is a snapshot of one user's window
type Usage struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	Window    string    `json:"window"`
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(rdb redis.Cmdable, config RateLimitConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{redis: rdb, config: config, log: logger.OrNop(log).Named("ratelimit"), now: time.Now}
}

// NewGenerationRateLimiter limits recipe generation per user per hour
func NewGenerationRateLimiter(rdb redis.Cmdable, perHour int, log *zap.Logger) *RateLimiter {
	return NewRateLimiter(rdb, RateLimitConfig{
		Window:    time.Hour,
		Limit:     perHour,
		KeyPrefix: "rate_limit:recipe_generation",
	}, log)
}

// NewModificationRateLimiter limits recipe modification per user per hour
func NewModificationRateLimiter(rdb redis.Cmdable, perHour int, log *zap.Logger) *RateLimiter {
	return NewRateLimiter(rdb, RateLimitConfig{
		Window:    time.Hour,
		Limit:     perHour,
		KeyPrefix: "rate_limit:recipe_modification",
	}, log)
}

func (rl *RateLimiter) window() (string, time.Time) {
	start := rl.now().Truncate(rl.config.Window)
	return strconv.FormatInt(start.Unix(), 10), start.Add(rl.config.Window)
}

func (rl *RateLimiter) key(subject, window string) string {
	return fmt.Sprintf("%s:%s:%s", rl.config.KeyPrefix, subject, window)
}

// Enabled reports whether the limiter enforces anything
func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.redis != nil && rl.config.Limit > 0
}

// IsAllowed counts one request for subject.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, subject string) (bool, int, time.Time, error) {
	window, resetAt := rl.window()
	key := rl.key(subject, window)

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, time.Time{}, err
	}
	if count == 1 {
		if err := rl.redis.Expire(ctx, key, rl.config.Window).Err(); err != nil {
			return false, 0, time.Time{}, err
		}
	}

	remaining := rl.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return int(count) <= rl.config.Limit, remaining, resetAt, nil
}

// Usage reports the subject's window without counting a request
func (rl *RateLimiter) Usage(ctx context.Context, subject string) (*Usage, error) {
	window, resetAt := rl.window()
	usage := &Usage{Limit: rl.config.Limit, Remaining: rl.config.Limit, ResetAt: resetAt, Window: rl.config.Window.String()}

	count, err := rl.redis.Get(ctx, rl.key(subject, window)).Int()
	if errors.Is(err, redis.Nil) {
		return usage, nil
	}
	if err != nil {
		return nil, err
	}
	usage.Remaining = rl.config.Limit - count
	if usage.Remaining < 0 {
		usage.Remaining = 0
	}
	return usage, nil
}

// Middleware enforces the limit for the authenticated user. A Redis failure
// lets the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Enabled() {
			c.Next()
			return
		}

		userID, ok := UserID(c)
		if !ok {
			Abort(c, apperrors.NewUnauthorizedError(""))
			return
		}

		allowed, remaining, resetAt, err := rl.IsAllowed(c.Request.Context(), userID.String())
		if err != nil {
			rl.log.Warn("rate limit check failed", zap.String("prefix", rl.config.KeyPrefix), zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retryAfter := int(resetAt.Sub(rl.now()).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			Abort(c, apperrors.NewTooManyRequestsError(
				fmt.Sprintf("limit of %d requests per %v reached", rl.config.Limit, rl.config.Window)))
			return
		}

		c.Next()
	}
}
