package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"go-ats-backend/internal/delivery/http/response"
	"go-ats-backend/internal/domain"
	"go-ats-backend/pkg/apperror"
	"go-ats-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler translates errors pushed with c.Error into the response
// envelope. It is the only place that decides status codes for failures.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		var conflict *domain.ConflictError
		var maxBytes *http.MaxBytesError

		switch {
		case errors.As(err, &appErr):
			if appErr.Code >= http.StatusInternalServerError {
				logInternal(c, err)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Errors)
		case errors.Is(err, domain.ErrNotFound):
			response.Error(c, http.StatusNotFound, "Resource not found", nil)
		case errors.As(err, &conflict):
			var fields []apperror.FieldError
			msg := "A record with these values already exists"
			if conflict.Field != "" {
				msg = fmt.Sprintf("A record with this %s already exists", conflict.Field)
				fields = []apperror.FieldError{{Field: conflict.Field, Message: msg}}
			}
			response.Error(c, http.StatusConflict, msg, fields)
		case errors.As(err, &maxBytes):
			response.Error(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds the %d byte limit", maxBytes.Limit), nil)
		default:
			// Never expose internal error details to clients.
			logInternal(c, err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}

func logInternal(c *gin.Context, err error) {
	logger.Log.Error("Internal Server Error",
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", requestID(c),
	)
}
