package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrAddressRequired    = errors.New("delivery address required")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrValidation         = errors.New("validation failed")
)

// PlacementStep names a persisted step of the order placement sequence.
type PlacementStep string

const (
	StepOrderHeader  PlacementStep = "order_header"
	StepOrderItems   PlacementStep = "order_items"
	StepTimeline     PlacementStep = "order_timeline"
	StepNotification PlacementStep = "notification"
)

// StepError reports which placement step failed. OrderID is set when the
// order header had already been written before the failure.
type StepError struct {
	Step    PlacementStep
	OrderID string
	Err     error
}

func (e *StepError) Error() string {
	if e.OrderID != "" {
		return fmt.Sprintf("place order %s: %s: %v", e.OrderID, e.Step, e.Err)
	}
	return fmt.Sprintf("place order: %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
