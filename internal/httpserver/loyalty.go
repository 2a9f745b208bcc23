package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) loyaltyTransactions(c *gin.Context) {
	transactions, err := h.deps.Loyalty.History(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
