package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/havenapp/haven-backend/internal/pkg/ctxutil"
)

// AttachRequestContext normalizes the request context before anything else
// reads it; auth later swaps in the resolved request data.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.Default(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
