package models

import "time"

// CartLine is one purchasable entry in a user's cart. UnitPriceCents is the
// canonical amount; formatted prices are derived one-way for display and are
// never parsed back into numbers.
type CartLine struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Brand          string `json:"brand,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	AvailableStock *int   `json:"available_stock,omitempty"`
	IsAvailable    *bool  `json:"is_available,omitempty"`
}

type CartSnapshot struct {
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartTotals holds the derived amounts for a cart state. Installment is the
// 12x split shown next to the total, informational only.
type CartTotals struct {
	SubtotalCents    int64 `json:"subtotal_cents"`
	ShippingCents    int64 `json:"shipping_cents"`
	TotalCents       int64 `json:"total_cents"`
	InstallmentCents int64 `json:"installment_cents"`
}
