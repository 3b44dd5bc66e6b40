package models

import (
	"time"

	"github.com/marketarena/marketplace-api/internal/catalog"
)

// Product represents a marketplace listing. Technical specification fields
// (GSM, dimensions, material) are copied from the variant registry at
// creation time and are never settable by the owner; marketing fields and
// price are seller-mutable during seller-write phases.
type Product struct {
	ID               string          `db:"id" json:"id"`
	SellerID         string          `db:"seller_id" json:"sellerId"`
	Variant          catalog.Variant `db:"variant" json:"variant"`
	Name             string          `db:"name" json:"name"`
	ShortDescription string          `db:"short_description" json:"shortDescription"`
	LongDescription  string          `db:"long_description" json:"longDescription"`
	PriceInCent      int             `db:"price_in_cent" json:"priceInCent"`
	Currency         string          `db:"currency" json:"currency"`

	// Registry copy, immutable for the life of the listing.
	GSM          int    `db:"gsm" json:"gsm"`
	WidthInches  int    `db:"width_inches" json:"widthInches"`
	LengthInches int    `db:"length_inches" json:"lengthInches"`
	Material     string `db:"material" json:"material"`

	ImageURL     string `db:"image_url" json:"imageUrl"`
	ImageAltText string `db:"image_alt_text" json:"imageAltText"`

	// Ranking is assigned by the ranking engine; nil until the first pass.
	Ranking    *int      `db:"ranking" json:"ranking"`
	Bestseller bool      `db:"bestseller" json:"bestseller"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// ProductSummary is the public search-result shape. Wholesale cost never
// appears here or on the detail view.
type ProductSummary struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	SellerID         string          `json:"sellerId"`
	Variant          catalog.Variant `json:"variant"`
	PriceInCent      int             `json:"priceInCent"`
	Currency         string          `json:"currency"`
	Bestseller       bool            `json:"bestseller"`
	Ranking          *int            `json:"ranking"`
	ShortDescription string          `json:"shortDescription"`
	ImageURL         string          `json:"imageUrl"`
}

// Summary projects a Product into its public search shape.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:               p.ID,
		Name:             p.Name,
		SellerID:         p.SellerID,
		Variant:          p.Variant,
		PriceInCent:      p.PriceInCent,
		Currency:         p.Currency,
		Bestseller:       p.Bestseller,
		Ranking:          p.Ranking,
		ShortDescription: p.ShortDescription,
		ImageURL:         p.ImageURL,
	}
}
