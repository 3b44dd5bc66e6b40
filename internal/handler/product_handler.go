package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/marketarena/marketplace-api/internal/middleware"
	"github.com/marketarena/marketplace-api/internal/service"
	"github.com/marketarena/marketplace-api/internal/utils"
)

// ProductHandler handles listing endpoints: seller-authenticated writes and
// public reads.
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProduct creates a listing under the caller-chosen product id.
// Requires a seller token and a seller-write phase.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	seller := middleware.GetSeller(c)
	productID := c.Param("id")

	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", err.Error())
		return
	}

	product, err := h.productService.Create(c.Request.Context(), seller.ID, productID, &req)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.Success(c, 201, "Product created successfully", gin.H{
		"productId": product.ID,
	})
}

// UpdateProduct applies a partial update to a listing owned by the caller.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	seller := middleware.GetSeller(c)
	productID := c.Param("id")

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", err.Error())
		return
	}

	product, err := h.productService.Update(c.Request.Context(), seller.ID, productID, &req)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.Success(c, 200, "Product updated successfully", gin.H{
		"productId": product.ID,
	})
}

// GetProduct returns the full listing record. Public, never phase-gated.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Product retrieved successfully", gin.H{
		"product": product,
	})
}

// SearchProducts returns ranked listing summaries matching the query.
// Public, never phase-gated.
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "query parameter 'q' is required")
		return
	}

	results, err := h.productService.Search(c.Request.Context(), query)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, 200, "Search completed successfully", gin.H{
		"products": results,
	})
}
