package order

import (
	"context"

	"github.com/shopspring/decimal"

	"joulina-backend/internal/domain"
)

// CheckoutInput is everything the checkout transaction needs besides the
// cart contents, which it re-reads itself to avoid stale prices and stock.
type CheckoutInput struct {
	CartID            string
	UserID            string
	ShippingAddressID string
	Notes             string
	ShippingFee       decimal.Decimal
	Discount          decimal.Decimal
}

// Repository owns order rows and the cart-to-order conversion.
//
// CreateFromCart runs the whole checkout as one transaction: lock and re-read
// the cart lines, conditionally decrement stock per line (aborting everything
// on the first shortfall), snapshot prices into the order and its items,
// write the initial pending history row and the inventory log, and clear the
// cart. A concurrent caller for the same cart blocks on the line locks and
// then fails with ErrEmptyCart.
type Repository interface {
	CreateFromCart(ctx context.Context, in CheckoutInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus, notes string, markPaid bool) error
	CancelAndRestock(ctx context.Context, orderID string, notes string) error
}
