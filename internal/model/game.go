package model

import "time"

// Game is a rentable catalog entry. The descriptive fields and prices are
// immutable here; only the status changes, in lock-step with the rental
// ledger.
type Game struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Genre     string    `json:"genre"`
	Platform  string    `json:"platform"`
	Price     float64   `json:"price"`
	RentPrice float64   `json:"rent_price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Game statuses.
const (
	GameStatusAvailable = "Available"
	GameStatusRented    = "Rented"
)
