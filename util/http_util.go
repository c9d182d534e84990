// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	sift_errors "github.com/dev-mohitbeniwal/sift/api/errors"
	logger "github.com/dev-mohitbeniwal/sift/api/logging"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetUserIDFromContext resolves the authenticated user: the auth middleware
// sets "userID" on the gin context; the X-User-ID header is the fallback for
// trusted internal callers.
func GetUserIDFromContext(c *gin.Context) (string, error) {
	if userID, exists := c.Get("userID"); exists {
		return userID.(string), nil
	}
	if header := c.GetHeader("X-User-ID"); header != "" {
		return header, nil
	}
	return "", sift_errors.ErrUnauthorized
}
