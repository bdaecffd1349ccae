package dto

import "time"

// QuoteResponse is the priced checkout snapshot.
type QuoteResponse struct {
	Items     []CartLineResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  float64            `json:"subtotal"`
	Shipping  float64            `json:"shipping"`
	Tax       float64            `json:"tax"`
	Total     float64            `json:"total"`
}

// PlaceOrderRequest selects the delivery address and optional notes.
type PlaceOrderRequest struct {
	AddressID int64  `json:"address_id"`
	Notes     string `json:"notes" binding:"max=1000"`
}

// PlaceOrderResponse confirms a placed order.
type PlaceOrderResponse struct {
	OrderID     string    `json:"order_id"`
	ItemCount   int       `json:"item_count"`
	Subtotal    float64   `json:"subtotal"`
	Shipping    float64   `json:"shipping"`
	Tax         float64   `json:"tax"`
	Total       float64   `json:"total"`
	CartCleared bool      `json:"cart_cleared"`
	PlacedAt    time.Time `json:"placed_at"`
}

// ErrorResponse describes a failed request. Step and OrderID are set when
// an order placement stopped part way.
type ErrorResponse struct {
	Error   string `json:"error"`
	Step    string `json:"step,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}
