package server

import (
	"net/http"
	"strings"

	"fitclass/internal/api"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects write requests whose non-empty body is not JSON.
// Body decoding and field validation stay with the handlers.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		if !strings.Contains(c.GetHeader("Content-Type"), "application/json") {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, api.ErrorResponse{
				Error: "content type must be application/json",
				Code:  "UNSUPPORTED_MEDIA_TYPE",
			})
			return
		}

		c.Next()
	}
}
