package model

// CartLine is one product entry in a shopping cart. ID is assigned by the
// remote store for signed-in customers and generated locally for guests.
// OwnerID names the account whose remote cart the line mirrors and is zero
// for lines added as a guest.
type CartLine struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
	OwnerID   int64   `json:"owner_id,omitempty"`
}

// Subtotal is unit price times quantity.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// CountItems sums quantities across lines.
func CountItems(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// SumPrice sums price * quantity across lines.
func SumPrice(lines []CartLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}
