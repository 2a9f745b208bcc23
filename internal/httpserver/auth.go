package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	identitysvc "joulina-backend/internal/service/identity"
)

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h *handlers) register(c *gin.Context) {
	var req identitysvc.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.deps.Identity.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// login verifies credentials and, when the client carried a session key,
// merges the anonymous cart into the user's cart before responding.
func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "phoneNumber and password are required")
		return
	}

	user, pair, err := h.deps.Identity.Login(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if sessionKey := strings.TrimSpace(c.GetHeader(headerSessionKey)); sessionKey != "" {
		if err := h.deps.Merge.Merge(c.Request.Context(), sessionKey, user.ID); err != nil {
			h.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"expiresIn":    pair.ExpiresIn,
	})
}

func (h *handlers) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refreshToken is required")
		return
	}

	pair, err := h.deps.Identity.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *handlers) logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refreshToken is required")
		return
	}

	if err := h.deps.Identity.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "logged out"})
}
