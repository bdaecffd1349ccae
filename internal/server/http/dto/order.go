package dto

import "time"

// OrderResponse is an order summary.
type OrderResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Subtotal  float64   `json:"subtotal"`
	Shipping  float64   `json:"shipping"`
	Tax       float64   `json:"tax"`
	Total     float64   `json:"total"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderItemResponse is a purchased line.
type OrderItemResponse struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// TimelineEventResponse is one status history entry.
type TimelineEventResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderDetailResponse is an order with items, history and address.
type OrderDetailResponse struct {
	OrderResponse
	Items    []OrderItemResponse     `json:"items"`
	Timeline []TimelineEventResponse `json:"timeline"`
	Address  *AddressResponse        `json:"address,omitempty"`
}
