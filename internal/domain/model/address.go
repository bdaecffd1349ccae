package model

import "time"

// Address is a saved delivery address of a user.
type Address struct {
	ID           int64
	UserID       int64
	Name         string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	IsDefault    bool
	CreatedAt    time.Time
}

// Profile holds optional contact details of a user.
type Profile struct {
	UserID    int64
	Name      string
	Phone     string
	Address   string
	UpdatedAt time.Time
}
