package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /api/user/orders.
func (h *OrderHandler) List(c *gin.Context) {
	userID := CurrentUserID(c)
	orders, err := h.facade.Orders(c.Request.Context(), userID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/user/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	userID := CurrentUserID(c)
	detail, err := h.facade.OrderDetail(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	response := dto.OrderDetailResponse{
		OrderResponse: toOrderResponse(detail.Order),
		Items:         make([]dto.OrderItemResponse, 0, len(detail.Items)),
		Timeline:      make([]dto.TimelineEventResponse, 0, len(detail.Timeline)),
	}
	for _, item := range detail.Items {
		response.Items = append(response.Items, dto.OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Image:       item.Image,
			Price:       item.Price,
			Quantity:    item.Quantity,
		})
	}
	for _, event := range detail.Timeline {
		response.Timeline = append(response.Timeline, dto.TimelineEventResponse{
			Status:    string(event.Status),
			Message:   event.Message,
			Timestamp: event.Timestamp,
		})
	}
	if detail.Address != nil {
		address := toAddressResponse(*detail.Address)
		response.Address = &address
	}

	c.JSON(http.StatusOK, response)
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:        order.ID,
		Status:    string(order.Status),
		Subtotal:  order.Subtotal,
		Shipping:  order.Shipping,
		Tax:       order.Tax,
		Total:     order.Total,
		Notes:     order.Notes,
		CreatedAt: order.CreatedAt,
	}
}
