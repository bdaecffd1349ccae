package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/server/http/dto"
)

// CheckoutHandler prices the cart and places orders.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Quote handles GET /api/checkout/quote.
func (h *CheckoutHandler) Quote(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	snapshot := h.facade.Checkout(s)
	c.JSON(http.StatusOK, dto.QuoteResponse{
		Items:     toCartLines(snapshot.Lines),
		ItemCount: snapshot.ItemCount(),
		Subtotal:  snapshot.Totals.Subtotal,
		Shipping:  snapshot.Totals.Shipping,
		Tax:       snapshot.Totals.Tax,
		Total:     snapshot.Totals.Total,
	})
}

// Place handles POST /api/checkout.
func (h *CheckoutHandler) Place(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	receipt, err := h.facade.PlaceOrder(c.Request.Context(), s, req.AddressID, req.Notes)
	if err != nil {
		var stepErr *domainErrors.StepError
		switch {
		case errors.As(err, &stepErr):
			status := http.StatusBadGateway
			if errors.Is(err, domainErrors.ErrAlreadyExists) {
				status = http.StatusConflict
			}
			c.JSON(status, dto.ErrorResponse{
				Error:   stepErr.Err.Error(),
				Step:    string(stepErr.Step),
				OrderID: stepErr.OrderID,
			})
		case errors.Is(err, domainErrors.ErrNotAuthenticated):
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, domainErrors.ErrAddressRequired), errors.Is(err, domainErrors.ErrEmptyCart):
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.PlaceOrderResponse{
		OrderID:     receipt.OrderID,
		ItemCount:   receipt.ItemCount,
		Subtotal:    receipt.Totals.Subtotal,
		Shipping:    receipt.Totals.Shipping,
		Tax:         receipt.Totals.Tax,
		Total:       receipt.Totals.Total,
		CartCleared: receipt.CartCleared,
		PlacedAt:    receipt.PlacedAt,
	})
}
