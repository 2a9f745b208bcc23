package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joulina-backend/internal/domain"
)

type addItemRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type updateLineRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) cartSnapshot(c *gin.Context) {
	snap, err := h.deps.Carts.Snapshot(c.Request.Context(), cartOwner(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handlers) cartAddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	var ref domain.SellableRef
	switch {
	case req.ProductID != "" && req.VariantID != "":
		badRequest(c, "provide productId or variantId, not both")
		return
	case req.ProductID != "":
		ref = domain.ProductRef(req.ProductID)
	case req.VariantID != "":
		ref = domain.VariantRef(req.VariantID)
	default:
		badRequest(c, "productId or variantId is required")
		return
	}

	snap, err := h.deps.Carts.AddItem(c.Request.Context(), cartOwner(c), ref, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handlers) cartUpdateLine(c *gin.Context) {
	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	snap, err := h.deps.Carts.UpdateLine(c.Request.Context(), cartOwner(c), c.Param("lineID"), req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handlers) cartRemoveLine(c *gin.Context) {
	snap, err := h.deps.Carts.RemoveLine(c.Request.Context(), cartOwner(c), c.Param("lineID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handlers) cartClear(c *gin.Context) {
	snap, err := h.deps.Carts.Clear(c.Request.Context(), cartOwner(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
