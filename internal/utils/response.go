package utils

import (
	"errors"
	"time"

	"github.com/Conversly/tripshare/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError renders err as an ErrorResponse. Server errors are logged with
// the request path; client errors are not. Only errors that are not
// APIErrors have their message hidden from the client.
func RespondError(c *gin.Context, err error) {
	status, code := StatusOf(err)
	if status >= 500 {
		Zlog.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	message := "an unexpected error occurred"
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		message = apiErr.Message
	}
	c.AbortWithStatusJSON(status, types.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}
