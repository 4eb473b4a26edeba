// Package api holds the gin handlers for the /api/v1 surface. Handlers bind and
// validate input, call one service method and attach any error to the context
// for middleware.ErrorHandler to render.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/middleware"
)

// MaxJSONBody caps request bodies read outside of multipart uploads
const MaxJSONBody = 1 << 20

// bind decodes the JSON body into dst and runs its binding tags.
// On failure the error is attached and false is returned.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.Abort(c, apperrors.NewValidationError(describeBindError(err)))
		return false
	}
	return true
}

// bindQuery is bind for query strings
func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		middleware.Abort(c, apperrors.NewValidationError(describeBindError(err)))
		return false
	}
	return true
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, describeField(fe))
		}
		return strings.Join(parts, "; ")
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "request body is empty"
	case errors.As(err, &syntaxErr):
		return "request body is not valid JSON"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type)
	}
	return "invalid request"
}

func describeField(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "datetime":
		return field + " must be a date (YYYY-MM-DD)"
	case "email":
		return field + " must be an email address"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// currentUser returns the authenticated caller or aborts with 401
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		middleware.Abort(c, apperrors.NewUnauthorizedError(""))
	}
	return id, ok
}

// pathID parses a uuid path parameter or aborts with 400
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		middleware.Abort(c, apperrors.NewValidationError(name+" must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// userAndID is currentUser plus pathID("id")
func userAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := pathID(c, "id")
	return userID, id, ok
}

// fail attaches err for the error middleware
func fail(c *gin.Context, err error) {
	middleware.Abort(c, err)
}
