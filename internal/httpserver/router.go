package httpserver

import (
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Identity == nil {
		return nil, errors.New("httpserver: identity service is required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-Key"},
		ExposeHeaders:    []string{"X-Session-Key"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refresh)
		auth.POST("/logout", h.logout)
	}

	api := router.Group("/", identify(deps.Identity))
	{
		cart := api.Group("/cart")
		{
			cart.GET("", h.cartSnapshot)
			cart.POST("/items", h.cartAddItem)
			cart.PUT("/items/:lineID", h.cartUpdateLine)
			cart.POST("/items/:lineID/remove", h.cartRemoveLine)
			cart.POST("/clear", h.cartClear)
		}

		user := api.Group("/", authRequired())
		{
			user.POST("/checkout", h.checkout)

			user.GET("/orders", h.listOrders)
			user.GET("/orders/:orderID", h.getOrder)
			user.POST("/orders/:orderID/cancel", h.cancelOrder)
			user.POST("/orders/:orderID/status", staffRequired(), h.updateOrderStatus)
			user.POST("/stock/adjust", staffRequired(), h.adjustStock)

			user.GET("/addresses", h.listAddresses)
			user.POST("/addresses", h.createAddress)
			user.PUT("/addresses/:addressID", h.updateAddress)
			user.DELETE("/addresses/:addressID", h.deleteAddress)
			user.POST("/addresses/:addressID/default", h.setDefaultAddress)

			user.GET("/loyalty/transactions", h.loyaltyTransactions)
		}
	}

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
