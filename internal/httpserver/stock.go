package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joulina-backend/internal/domain"
)

type adjustStockRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Delta     int    `json:"delta"`
	Reference string `json:"reference"`
}

func (h *handlers) adjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Delta == 0 {
		badRequest(c, "delta must be non-zero")
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

	adj := domain.StockIn
	if req.Delta < 0 {
		adj = domain.StockAdjustment
	}

	if err := h.deps.Stock.AdjustStock(c.Request.Context(), ref, req.Delta, adj, req.Reference); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
