package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Abort writes payload as-is and stops the handler chain. It is used where a
// route's contract fixes the response body shape instead of the error envelope.
func Abort(c *gin.Context, status int, payload interface{}) {
	c.AbortWithStatusJSON(status, payload)
}
