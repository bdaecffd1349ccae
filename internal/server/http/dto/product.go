package dto

// ProductResponse is a catalog entry.
type ProductResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Tag         *string `json:"tag,omitempty"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	Image       string  `json:"image"`
}

// SeedResponse reports how many products were inserted.
type SeedResponse struct {
	Inserted int `json:"inserted"`
}
