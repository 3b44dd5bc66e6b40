package service

import (
	"context"
	"fmt"

	"github.com/marketarena/marketplace-api/internal/battle"
	"github.com/marketarena/marketplace-api/internal/catalog"
	"github.com/marketarena/marketplace-api/internal/metrics"
	"github.com/marketarena/marketplace-api/internal/models"
	"github.com/marketarena/marketplace-api/internal/repository"
	"github.com/marketarena/marketplace-api/internal/utils"
)

// ProductService handles listing creation, updates, and public reads. All
// writes are gated on the seller_write capability of the current phase; the
// phase check and the write share one store transaction.
type ProductService struct {
	store      repository.Store
	floorRatio float64
}

// NewProductService constructs a ProductService with the configured price
// floor ratio.
func NewProductService(store repository.Store, floorRatio float64) *ProductService {
	return &ProductService{store: store, floorRatio: floorRatio}
}

// CreateProductRequest carries the seller-supplied listing fields. Technical
// specification comes from the variant registry, never from the caller.
type CreateProductRequest struct {
	Variant          catalog.Variant `json:"variant" binding:"required"`
	Name             string          `json:"name" binding:"required"`
	ShortDescription string          `json:"shortDescription" binding:"required"`
	LongDescription  string          `json:"longDescription" binding:"required"`
	PriceInCent      int             `json:"priceInCent" binding:"required"`
	ImageURL         string          `json:"imageUrl"`
	ImageAltText     string          `json:"imageAltText"`
}

// UpdateProductRequest carries partial updates. Each field is independently
// present-or-absent; a nil pointer means "leave unchanged", which is distinct
// from an explicit zero value.
type UpdateProductRequest struct {
	Name             *string `json:"name"`
	ShortDescription *string `json:"shortDescription"`
	LongDescription  *string `json:"longDescription"`
	PriceInCent      *int    `json:"priceInCent"`
	ImageURL         *string `json:"imageUrl"`
	ImageAltText     *string `json:"imageAltText"`
}

// Create validates the variant and price floor, copies the registry
// specification into the listing, and persists it. The caller chooses the
// product id; duplicates fail with ErrDuplicateProductID.
func (s *ProductService) Create(ctx context.Context, sellerID, productID string, req *CreateProductRequest) (*models.Product, error) {
	var created *models.Product
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		state, err := CurrentState(ctx, tx)
		if err != nil {
			return err
		}
		if err := battle.Authorize(state.Phase, battle.CapabilitySellerWrite); err != nil {
			return err
		}

		spec, err := catalog.Resolve(req.Variant)
		if err != nil {
			return err
		}
		if err := catalog.ValidatePrice(req.Variant, req.PriceInCent, s.floorRatio); err != nil {
			return err
		}

		product := &models.Product{
			ID:               productID,
			SellerID:         sellerID,
			Variant:          req.Variant,
			Name:             req.Name,
			ShortDescription: req.ShortDescription,
			LongDescription:  req.LongDescription,
			PriceInCent:      req.PriceInCent,
			Currency:         "USD",
			GSM:              spec.GSM,
			WidthInches:      spec.WidthInches,
			LengthInches:     spec.LengthInches,
			Material:         spec.Material,
			ImageURL:         req.ImageURL,
			ImageAltText:     req.ImageAltText,
		}
		if err := tx.CreateProduct(ctx, product); err != nil {
			return err
		}
		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ProductsCreated.WithLabelValues(string(created.Variant)).Inc()
	return created, nil
}

// Update applies the supplied fields to an existing listing owned by
// sellerID. Price changes are re-validated against the registry's current
// wholesale cost. Specification fields are not updatable.
func (s *ProductService) Update(ctx context.Context, sellerID, productID string, req *UpdateProductRequest) (*models.Product, error) {
	var updated *models.Product
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		state, err := CurrentState(ctx, tx)
		if err != nil {
			return err
		}
		if err := battle.Authorize(state.Phase, battle.CapabilitySellerWrite); err != nil {
			return err
		}

		product, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if product.SellerID != sellerID {
			return fmt.Errorf("%w: product %s belongs to another seller", utils.ErrNotOwner, productID)
		}

		if req.PriceInCent != nil {
			if err := catalog.ValidatePrice(product.Variant, *req.PriceInCent, s.floorRatio); err != nil {
				return err
			}
			product.PriceInCent = *req.PriceInCent
		}
		if req.Name != nil {
			product.Name = *req.Name
		}
		if req.ShortDescription != nil {
			product.ShortDescription = *req.ShortDescription
		}
		if req.LongDescription != nil {
			product.LongDescription = *req.LongDescription
		}
		if req.ImageURL != nil {
			product.ImageURL = *req.ImageURL
		}
		if req.ImageAltText != nil {
			product.ImageAltText = *req.ImageAltText
		}

		if err := tx.UpdateProduct(ctx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get returns a single listing. Always permitted, regardless of phase.
func (s *ProductService) Get(ctx context.Context, productID string) (*models.Product, error) {
	return s.store.GetProduct(ctx, productID)
}

// Search returns listing summaries matching the query, ordered by current
// ranking ascending (unranked last) with a product-id tie-break so output is
// reproducible for identical ledger state.
func (s *ProductService) Search(ctx context.Context, query string) ([]models.ProductSummary, error) {
	products, err := s.store.SearchProducts(ctx, query)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.ProductSummary, 0, len(products))
	for i := range products {
		summaries = append(summaries, products[i].Summary())
	}
	return summaries, nil
}
