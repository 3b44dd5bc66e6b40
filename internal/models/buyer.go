package models

import "time"

// Buyer represents a customer agent. Same lifecycle as Seller: created at
// battle init, immutable, cleared on reset.
type Buyer struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	AuthToken string    `db:"auth_token" json:"authToken,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}
