package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"joulina-backend/internal/domain"
	identitysvc "joulina-backend/internal/service/identity"
)

// respondError maps domain errors onto HTTP responses with a
// `{"detail": "..."}` body.
func (h *handlers) respondError(c *gin.Context, err error) {
	var stockErr *domain.InsufficientStockError
	var validationErr domain.ValidationError

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{"detail": stockErr.Error(), "available": stockErr.Available})
	case errors.As(err, &validationErr),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"detail": "already exists"})
	case errors.Is(err, identitysvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid credentials"})
	case errors.Is(err, identitysvc.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
	default:
		h.logger.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
}
