package response

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/pkg/logger"
	"parcelhub.backend/pkg/utils"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Message sends a response carrying only a human readable message
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// Paginated sends a list under key together with its pagination meta
func Paginated(c *gin.Context, key string, items interface{}, meta utils.PaginationMeta) {
	c.JSON(http.StatusOK, gin.H{
		key:          items,
		"pagination": meta,
	})
}

// Error maps err onto its public status, code and message. Server-side
// failures are logged with the underlying cause, which is never rendered.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromError(err)
	if appErr == nil {
		appErr = domainerrors.InternalServerError("internal server error")
	}

	if appErr.Status >= http.StatusInternalServerError {
		ctx := context.Background()
		if c.Request != nil {
			ctx = c.Request.Context()
		}
		logger.Error(ctx, "Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", appErr.Status),
			zap.Error(err),
		)
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// ErrorWithError sends an error response with a specific status, code and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

// Abort writes the error response and stops the handler chain
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
