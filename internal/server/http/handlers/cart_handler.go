package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/server/http/dto"
	"github.com/polkiloo/petshop/internal/session"
)

// CartHandler exposes the session cart.
type CartHandler struct {
	catalog CatalogFacade
}

// NewCartHandler constructs CartHandler. Prices and names of added
// products come from catalog, never from the request.
func NewCartHandler(catalog CatalogFacade) *CartHandler {
	return &CartHandler{catalog: catalog}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toCartResponse(s))
}

// Add handles POST /api/cart/items.
func (h *CartHandler) Add(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx := c.Request.Context()
	product, err := h.catalog.Product(ctx, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	line := model.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  req.Quantity,
		Image:     product.Image,
	}
	if err := s.Cart().AddItem(ctx, line); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(s))
}

// Update handles PATCH /api/cart/items/:productID.
func (h *CartHandler) Update(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "productID")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := s.Cart().UpdateQuantity(c.Request.Context(), productID, *req.Quantity); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(s))
}

// Remove handles DELETE /api/cart/items/:productID.
func (h *CartHandler) Remove(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "productID")
	if !ok {
		return
	}

	if err := s.Cart().RemoveItem(c.Request.Context(), productID); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(s))
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	if err := s.Cart().Clear(c.Request.Context()); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(s))
}

// writeCartError reports a rejected cart mutation. The local cart is
// unchanged in every case.
func writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	}
}

func toCartResponse(s *session.Session) dto.CartResponse {
	snapshot := s.Cart().Snapshot()
	mode := "guest"
	if s.UserID() != 0 {
		mode = "authenticated"
	}
	return dto.CartResponse{
		Mode:       mode,
		Items:      toCartLines(snapshot.Lines),
		TotalItems: snapshot.TotalItems,
		TotalPrice: snapshot.TotalPrice,
	}
}

func toCartLines(lines []model.CartLine) []dto.CartLineResponse {
	out := make([]dto.CartLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.CartLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Image:     l.Image,
			Subtotal:  l.Subtotal(),
		})
	}
	return out
}
