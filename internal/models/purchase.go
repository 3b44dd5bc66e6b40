package models

import "time"

// Purchase is an immutable ledger row. Price and wholesale cost are snapshot
// at the instant of purchase so later catalog edits cannot retroactively
// change historical profit; day and round label the row for per-round
// standings.
type Purchase struct {
	ID                      string    `db:"id" json:"id"`
	ProductID               string    `db:"product_id" json:"productId"`
	BuyerID                 string    `db:"buyer_id" json:"buyerId"`
	SellerID                string    `db:"seller_id" json:"sellerId"`
	PriceOfPurchase         int       `db:"price_of_purchase" json:"priceOfPurchase"`
	WholesaleCostAtPurchase int       `db:"wholesale_cost_at_purchase" json:"-"`
	Day                     int       `db:"day" json:"day"`
	Round                   int       `db:"round" json:"round"`
	PurchasedAt             time.Time `db:"purchased_at" json:"purchasedAt"`
}
