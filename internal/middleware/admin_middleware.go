package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/marketarena/marketplace-api/internal/utils"
)

// AdminMiddleware guards orchestrator endpoints with a static admin key
// passed in the X-Admin-Key header.
type AdminMiddleware struct {
	adminKey string
}

// NewAdminMiddleware constructs an AdminMiddleware.
func NewAdminMiddleware(adminKey string) *AdminMiddleware {
	return &AdminMiddleware{adminKey: adminKey}
}

// Handle returns a middleware that rejects requests without the admin key.
func (m *AdminMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Admin-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(m.adminKey)) != 1 {
			utils.Fail(c, utils.ErrInvalidAdminKey)
			c.Abort()
			return
		}
		c.Next()
	}
}
