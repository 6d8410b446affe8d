package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/atlaspedia/atlaspedia-backend/internal/requestdata"
)

// AttachRequestContext stores client metadata on the request context.
// History records read user agent and IP from here; the auth middleware
// fills in the actor id on the same struct for protected routes.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
			UserAgent: c.Request.UserAgent(),
			IP:        c.ClientIP(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
