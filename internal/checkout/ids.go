package checkout

import (
	"strings"

	"github.com/google/uuid"
)

// IDGenerator produces order identifiers.
type IDGenerator interface {
	NewOrderID() string
}

// UUIDGenerator issues ORD- prefixed time-ordered UUIDs.
type UUIDGenerator struct{}

// NewOrderID implements IDGenerator.
func (UUIDGenerator) NewOrderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "ORD-" + strings.ToUpper(id.String())
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

// NewOrderID implements IDGenerator.
func (f IDFunc) NewOrderID() string { return f() }
