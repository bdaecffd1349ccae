package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/petshop/internal/domain/errors"
	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/server/http/dto"
	"github.com/polkiloo/petshop/internal/usecase"
)

// AccountHandler serves notifications, the profile and saved addresses.
type AccountHandler struct {
	facade AccountFacade
}

// NewAccountHandler constructs AccountHandler.
func NewAccountHandler(facade AccountFacade) *AccountHandler {
	return &AccountHandler{facade: facade}
}

// Notifications handles GET /api/user/notifications.
func (h *AccountHandler) Notifications(c *gin.Context) {
	items, err := h.facade.Notifications(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	response := make([]dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		response = append(response, dto.NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      string(n.Type),
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

// Unread handles GET /api/user/notifications/unread.
func (h *AccountHandler) Unread(c *gin.Context) {
	c.JSON(http.StatusOK, dto.UnreadResponse{Count: h.facade.UnreadNotifications(c.Request.Context(), CurrentUserID(c))})
}

// MarkRead handles POST /api/user/notifications/:id/read.
func (h *AccountHandler) MarkRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.facade.MarkNotificationRead(c.Request.Context(), CurrentUserID(c), id); err != nil {
		writeAccountError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead handles POST /api/user/notifications/read-all.
func (h *AccountHandler) MarkAllRead(c *gin.Context) {
	if err := h.facade.MarkAllNotificationsRead(c.Request.Context(), CurrentUserID(c)); err != nil {
		writeAccountError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearNotifications handles DELETE /api/user/notifications.
func (h *AccountHandler) ClearNotifications(c *gin.Context) {
	if err := h.facade.ClearNotifications(c.Request.Context(), CurrentUserID(c)); err != nil {
		writeAccountError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Profile handles GET /api/user/profile.
func (h *AccountHandler) Profile(c *gin.Context) {
	profile, err := h.facade.Profile(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeAccountError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(profile))
}

// SaveProfile handles PUT /api/user/profile.
func (h *AccountHandler) SaveProfile(c *gin.Context) {
	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	profile, err := h.facade.SaveProfile(c.Request.Context(), CurrentUserID(c), usecase.ProfileInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		writeAccountError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(profile))
}

// Addresses handles GET /api/user/addresses.
func (h *AccountHandler) Addresses(c *gin.Context) {
	addresses, err := h.facade.Addresses(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeAccountError(c, err)
		return
	}
	response := make([]dto.AddressResponse, 0, len(addresses))
	for _, a := range addresses {
		response = append(response, toAddressResponse(a))
	}
	c.JSON(http.StatusOK, response)
}

// CreateAddress handles POST /api/user/addresses.
func (h *AccountHandler) CreateAddress(c *gin.Context) {
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	address, err := h.facade.CreateAddress(c.Request.Context(), CurrentUserID(c), toAddressInput(req))
	if err != nil {
		writeAccountError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAddressResponse(*address))
}

// UpdateAddress handles PUT /api/user/addresses/:id.
func (h *AccountHandler) UpdateAddress(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	address, err := h.facade.UpdateAddress(c.Request.Context(), CurrentUserID(c), id, toAddressInput(req))
	if err != nil {
		writeAccountError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAddressResponse(*address))
}

func writeAccountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func toProfileResponse(p *model.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		Name:      p.Name,
		Phone:     p.Phone,
		Address:   p.Address,
		UpdatedAt: p.UpdatedAt,
	}
}

func toAddressInput(req dto.AddressRequest) usecase.AddressInput {
	return usecase.AddressInput{
		Name:         req.Name,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		IsDefault:    req.IsDefault,
	}
}

func toAddressResponse(a model.Address) dto.AddressResponse {
	return dto.AddressResponse{
		ID:           a.ID,
		Name:         a.Name,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		IsDefault:    a.IsDefault,
	}
}
