package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// OperationTimeout bounds every request's unit of work to d.
func OperationTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
