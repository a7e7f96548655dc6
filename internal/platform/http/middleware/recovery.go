package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recovery converts panics into the JSON error envelope used by the proxy
// instead of gin's empty 500 response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		id := GetRequestID(c)
		slog.Error("panic recovered", "request_id", id, "path", c.Request.URL.Path, "panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"message":    "Unhandled server error.",
				"request_id": id,
			},
		})
	})
}
