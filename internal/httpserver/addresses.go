package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	addressrepo "joulina-backend/internal/repository/address"
)

type addressRequest struct {
	FullName     string `json:"fullName" binding:"required"`
	PhoneNumber  string `json:"phoneNumber" binding:"required"`
	AddressLine1 string `json:"addressLine1" binding:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state"`
	Country      string `json:"country" binding:"required"`
	PostalCode   string `json:"postalCode"`
	IsDefault    bool   `json:"isDefault"`
}

func (r addressRequest) toCreateInput(userID string) addressrepo.CreateInput {
	return addressrepo.CreateInput{
		UserID:       userID,
		FullName:     r.FullName,
		PhoneNumber:  r.PhoneNumber,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		Country:      r.Country,
		PostalCode:   r.PostalCode,
		IsDefault:    r.IsDefault,
	}
}

func (h *handlers) listAddresses(c *gin.Context) {
	addresses, err := h.deps.Addresses.ListByUser(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

func (h *handlers) createAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "fullName, phoneNumber, addressLine1, city and country are required")
		return
	}

	address, err := h.deps.Addresses.Create(c.Request.Context(), req.toCreateInput(c.GetString(ctxUserID)))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

func (h *handlers) updateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "fullName, phoneNumber, addressLine1, city and country are required")
		return
	}

	userID := c.GetString(ctxUserID)
	address, err := h.deps.Addresses.Update(c.Request.Context(), userID, c.Param("addressID"), req.toCreateInput(userID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (h *handlers) deleteAddress(c *gin.Context) {
	if err := h.deps.Addresses.Delete(c.Request.Context(), c.GetString(ctxUserID), c.Param("addressID")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) setDefaultAddress(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	if err := h.deps.Addresses.SetDefault(c.Request.Context(), userID, c.Param("addressID")); err != nil {
		h.respondError(c, err)
		return
	}

	address, err := h.deps.Addresses.GetByID(c.Request.Context(), userID, c.Param("addressID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}
