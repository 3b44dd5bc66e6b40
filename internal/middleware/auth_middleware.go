package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/marketarena/marketplace-api/internal/models"
	"github.com/marketarena/marketplace-api/internal/service"
	"github.com/marketarena/marketplace-api/internal/utils"
)

// AuthMiddleware resolves bearer tokens to seller or buyer identities. Each
// role has its own handler chain; a token from the other role is rejected
// with WRONG_ROLE rather than silently accepted.
type AuthMiddleware struct {
	authService *service.AuthService
	rateLimiter *InvalidAuthRateLimiter
}

// NewAuthMiddleware constructs a new AuthMiddleware.
func NewAuthMiddleware(authService *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		rateLimiter: NewInvalidAuthRateLimiter(),
	}
}

// Seller returns a middleware that requires a valid seller bearer token and
// stores the resolved seller in the context.
func (m *AuthMiddleware) Seller() gin.HandlerFunc {
	return func(c *gin.Context) {
		seller, err := m.authService.ResolveSeller(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			m.handleAuthError(c, err)
			return
		}
		c.Set("seller", seller)
		c.Next()
	}
}

// Buyer returns a middleware that requires a valid buyer bearer token and
// stores the resolved buyer in the context.
func (m *AuthMiddleware) Buyer() gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, err := m.authService.ResolveBuyer(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			m.handleAuthError(c, err)
			return
		}
		c.Set("buyer", buyer)
		c.Next()
	}
}

func (m *AuthMiddleware) handleAuthError(c *gin.Context, err error) {
	// Apply rate limit for invalid auth attempts
	ip := c.ClientIP()
	if !m.rateLimiter.Allow(ip) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		c.Abort()
		return
	}

	utils.Fail(c, err)
	c.Abort()
}

// GetSeller returns the authenticated seller from context.
func GetSeller(c *gin.Context) *models.Seller {
	seller, _ := c.Get("seller")
	if seller == nil {
		return nil
	}
	return seller.(*models.Seller)
}

// GetBuyer returns the authenticated buyer from context.
func GetBuyer(c *gin.Context) *models.Buyer {
	buyer, _ := c.Get("buyer")
	if buyer == nil {
		return nil
	}
	return buyer.(*models.Buyer)
}
