package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"joulina-backend/internal/domain"
)

const (
	ctxUserID     = "userID"
	ctxIsStaff    = "isStaff"
	ctxSessionKey = "sessionKey"

	headerSessionKey = "X-Session-Key"
)

// identify resolves the caller: a Bearer access token wins, otherwise the
// request runs as an anonymous session. A fresh session key is minted and
// echoed back when the client sent none.
func identify(identity identityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			claims, err := identity.ParseAccess(strings.TrimSpace(token))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid access token"})
				return
			}
			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxIsStaff, claims.IsStaff)
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader(headerSessionKey))
		if key == "" {
			key = identity.NewSessionKey()
		}
		c.Set(ctxSessionKey, key)
		c.Header(headerSessionKey, key)
		c.Next()
	}
}

func authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxUserID) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
			return
		}
		c.Next()
	}
}

func staffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ctxIsStaff) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "staff access required"})
			return
		}
		c.Next()
	}
}

// cartOwner maps the resolved identity onto a cart owner.
func cartOwner(c *gin.Context) domain.CartOwner {
	if userID := c.GetString(ctxUserID); userID != "" {
		return domain.UserOwner(userID)
	}
	return domain.SessionOwner(c.GetString(ctxSessionKey))
}
