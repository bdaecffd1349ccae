package model

import "time"

// OrderStatus describes fulfilment lifecycle of a placed order.
type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "placed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is the persisted order header.
type Order struct {
	ID        string
	UserID    int64
	AddressID int64
	Status    OrderStatus
	Subtotal  float64
	Shipping  float64
	Tax       float64
	Total     float64
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a line of a placed order, copied from the cart at checkout.
type OrderItem struct {
	ID          int64
	OrderID     string
	ProductID   int64
	ProductName string
	Image       string
	Price       float64
	Quantity    int
}

// OrderTimelineEvent records a status change of an order.
type OrderTimelineEvent struct {
	ID        int64
	OrderID   string
	Status    OrderStatus
	Message   string
	Timestamp time.Time
}

// OrderDetail bundles an order with its items, timeline and delivery address.
type OrderDetail struct {
	Order    Order
	Items    []OrderItem
	Timeline []OrderTimelineEvent
	Address  *Address
}

// IncompleteOrder is a processing order header that lacks items or a
// timeline entry.
type IncompleteOrder struct {
	Order       Order
	ItemCount   int
	HasTimeline bool
}
