package models

import "time"

// Seller represents a competing seller agent. Sellers are created during
// battle initialization and never mutated afterwards; the auth token is
// returned to the orchestrator exactly once.
type Seller struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	AuthToken string    `db:"auth_token" json:"authToken,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}
