package response

import (
	"errors"

	"github.com/gin-gonic/gin"
	domainerrors "licensekit.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Anything that is not an AppError becomes a
// generic internal error so unexpected faults never leak internal state.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = domainerrors.InternalError(err)
	}

	c.JSON(appErr.Status, gin.H{
		"success": false,
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// AbortError sends an error response and stops the handler chain
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
