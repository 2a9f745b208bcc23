package httpserver

import (
	"context"

	"joulina-backend/internal/domain"
	addressrepo "joulina-backend/internal/repository/address"
	checkoutsvc "joulina-backend/internal/service/checkout"
	identitysvc "joulina-backend/internal/service/identity"
)

type cartService interface {
	Snapshot(ctx context.Context, owner domain.CartOwner) (domain.CartSnapshot, error)
	AddItem(ctx context.Context, owner domain.CartOwner, ref domain.SellableRef, quantity int) (domain.CartSnapshot, error)
	UpdateLine(ctx context.Context, owner domain.CartOwner, lineID string, quantity int) (domain.CartSnapshot, error)
	RemoveLine(ctx context.Context, owner domain.CartOwner, lineID string) (domain.CartSnapshot, error)
	Clear(ctx context.Context, owner domain.CartOwner) (domain.CartSnapshot, error)
}

type checkoutService interface {
	Checkout(ctx context.Context, userID string, in checkoutsvc.Input) (*domain.Order, error)
}

type orderService interface {
	Get(ctx context.Context, userID string, isStaff bool, orderID string) (*domain.Order, error)
	List(ctx context.Context, userID string) ([]domain.Order, error)
	Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error)
	Transition(ctx context.Context, orderID string, status domain.OrderStatus, notes string) (*domain.Order, error)
}

type loyaltyService interface {
	History(ctx context.Context, userID string) ([]domain.PointTransaction, error)
}

type stockService interface {
	AdjustStock(ctx context.Context, ref domain.SellableRef, delta int, adj domain.InventoryAdjustment, reference string) error
}

type mergeService interface {
	Merge(ctx context.Context, sessionKey, userID string) error
}

type identityService interface {
	Register(ctx context.Context, in identitysvc.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, phoneNumber, password string) (*domain.User, *identitysvc.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*identitysvc.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseAccess(token string) (*identitysvc.Claims, error)
	NewSessionKey() string
}

// Deps collects the services the router depends on.
type Deps struct {
	Identity  identityService
	Merge     mergeService
	Carts     cartService
	Checkout  checkoutService
	Orders    orderService
	Addresses addressrepo.Repository
	Loyalty   loyaltyService
	Stock     stockService
}
