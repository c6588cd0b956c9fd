package response

import (
	"errors"
	"net/http"

	"recordlabel-commerce/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// The storefront API uses flat JSON shapes: payloads are returned as-is
// and every failure is `{"error": "..."}` with the mapped status code.

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Received acknowledges a webhook delivery. Stripe treats any 2xx as
// "do not retry", so the body is always the same regardless of which
// event type was handled.
func Received(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
