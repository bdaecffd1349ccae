package dto

// AddCartItemRequest adds units of a catalog product to the cart.
// A missing quantity means one unit.
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity"`
}

// UpdateCartItemRequest sets the quantity of a line. Zero or less removes it.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartLineResponse is one cart line.
type CartLineResponse struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
	Subtotal  float64 `json:"subtotal"`
}

// CartResponse is the cart as seen by the visitor.
type CartResponse struct {
	Mode       string             `json:"mode"`
	Items      []CartLineResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice float64            `json:"total_price"`
}
