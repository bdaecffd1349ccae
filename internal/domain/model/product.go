package model

import "time"

// Product is a catalog entry.
type Product struct {
	ID          int64
	Name        string
	Price       float64
	Tag         *string
	Category    string
	Description string
	Rating      float64
	Image       string
	CreatedAt   time.Time
}
