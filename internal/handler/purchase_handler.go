package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/marketarena/marketplace-api/internal/middleware"
	"github.com/marketarena/marketplace-api/internal/service"
	"github.com/marketarena/marketplace-api/internal/utils"
)

// PurchaseHandler handles buyer purchases against the ledger.
type PurchaseHandler struct {
	purchaseService *service.PurchaseService
}

// NewPurchaseHandler constructs a PurchaseHandler.
func NewPurchaseHandler(purchaseService *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// CreatePurchase records a purchase of the product in the path. Requires a
// buyer token and a buyer-write phase.
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	buyer := middleware.GetBuyer(c)
	productID := c.Param("productId")

	purchase, err := h.purchaseService.Purchase(c.Request.Context(), buyer.ID, productID)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.Success(c, 201, "Purchase recorded successfully", gin.H{
		"purchaseId": purchase.ID,
		"productId":  purchase.ProductID,
		"pricePaid":  purchase.PriceOfPurchase,
	})
}
