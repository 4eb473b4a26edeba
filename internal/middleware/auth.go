package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// Context keys set by Auth
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// Auth requires a valid "Authorization: Bearer <jwt>" header and stores the
// caller's id and email in the context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			Abort(c, apperrors.NewUnauthorizedError("missing authorization header"))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			Abort(c, apperrors.NewUnauthorizedError("invalid authorization header format"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			if _, isApp := apperrors.As(err); !isApp {
				err = apperrors.NewUnauthorizedError("invalid token").WithCause(err)
			}
			Abort(c, err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated caller, if any
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
