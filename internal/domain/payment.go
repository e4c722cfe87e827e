package domain

import (
	"time"
)

// Package is a purchased line item inside a payment.
type Package struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Image    string `json:"image,omitempty"`
}

// Payment is the verified purchase snapshot resolved from the commerce
// provider. It is read-only once fetched; the workflow only reads the first
// package as "the product" under review.
type Payment struct {
	ID         string    `json:"id"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	Date       time.Time `json:"date"`
	PlayerName string    `json:"player_name,omitempty"`
	PlayerID   string    `json:"player_id,omitempty"`
	Packages   []Package `json:"packages"`
	Status     string    `json:"status,omitempty"`
}

// Product returns the first purchased package. Multi-item purchases reduce to
// their first item; callers must check HasProducts first.
func (p *Payment) Product() Package {
	if len(p.Packages) == 0 {
		return Package{}
	}
	return p.Packages[0]
}

// HasProducts reports whether the payment carries at least one line item.
// A payment with no purchased product is not reviewable.
func (p *Payment) HasProducts() bool {
	return len(p.Packages) > 0
}

// CatalogPackage is a product catalog entry, used only to backfill a missing
// product image by name match.
type CatalogPackage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price,omitempty"`
	Currency string `json:"currency,omitempty"`
	Image    string `json:"image,omitempty"`
}
