package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Details string              `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorBody under "error"
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorHandler renders the last error a handler attached with c.Error.
// AppErrors keep their code and message; anything else becomes a generic 500.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log).Named("http")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := apperrors.As(err)
		if !ok {
			appErr = apperrors.Wrap(err, "unhandled error")
		}

		status := appErr.StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Debug("request rejected", fields...)
		}

		c.AbortWithStatusJSON(status, responseFor(appErr))
	}
}

// Internal details never reach the client; only classified client errors
// carry their details.
func responseFor(appErr *apperrors.AppError) ErrorResponse {
	body := ErrorBody{Code: appErr.Code, Message: appErr.Message}
	if appErr.StatusCode() < http.StatusInternalServerError {
		body.Details = appErr.Details
	} else {
		body.Message = apperrors.GenericMessage
	}
	return ErrorResponse{Error: body}
}

// Recovery turns a panic into the generic 500 response
func Recovery(log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log).Named("http")
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("error", recovered),
			zap.String("stack", string(debug.Stack())),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
			Code:    apperrors.CodeInternal,
			Message: apperrors.GenericMessage,
		}})
	})
}

// Abort attaches err for ErrorHandler and stops the chain
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
