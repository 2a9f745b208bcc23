package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"joulina-backend/internal/config"
	"joulina-backend/internal/db"
	"joulina-backend/internal/httpserver"
	addressrepo "joulina-backend/internal/repository/address"
	cartrepo "joulina-backend/internal/repository/cart"
	catalogrepo "joulina-backend/internal/repository/catalog"
	loyaltyrepo "joulina-backend/internal/repository/loyalty"
	orderrepo "joulina-backend/internal/repository/order"
	userrepo "joulina-backend/internal/repository/user"
	cartsvc "joulina-backend/internal/service/cart"
	checkoutsvc "joulina-backend/internal/service/checkout"
	identitysvc "joulina-backend/internal/service/identity"
	loyaltysvc "joulina-backend/internal/service/loyalty"
	mergesvc "joulina-backend/internal/service/merge"
	ordersvc "joulina-backend/internal/service/order"
	"joulina-backend/internal/service/stockguard"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	catalogRepo := catalogrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)
	loyaltyRepo := loyaltyrepo.NewPostgres(dbpool)
	addressRepo := addressrepo.NewPostgres(dbpool)
	userRepo := userrepo.NewPostgres(dbpool)

	var refreshStore identitysvc.RefreshStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
		refreshStore = identitysvc.NewRedisStore(client)
	} else {
		logger.Println("REDIS_ADDR not set, using in-memory refresh token store")
		refreshStore = identitysvc.NewMemoryStore()
	}

	guard := stockguard.New(catalogRepo)
	cartService := cartsvc.New(cartRepo, guard, catalogRepo)
	mergeService := mergesvc.New(cartRepo, logger)
	checkoutService := checkoutsvc.New(cartRepo, orderRepo, addressRepo, checkoutsvc.FreeShipping{}, logger)
	loyaltyService := loyaltysvc.New(loyaltyRepo, userRepo, logger)
	orderService := ordersvc.New(orderRepo, loyaltyService, logger)
	identityService := identitysvc.New(userRepo, refreshStore, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Identity:  identityService,
		Merge:     mergeService,
		Carts:     cartService,
		Checkout:  checkoutService,
		Orders:    orderService,
		Addresses: addressRepo,
		Loyalty:   loyaltyService,
		Stock:     catalogRepo,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
