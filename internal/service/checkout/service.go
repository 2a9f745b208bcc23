package checkout

import (
	"context"
	"errors"
	"log"

	"joulina-backend/internal/domain"
	addressrepo "joulina-backend/internal/repository/address"
	orderrepo "joulina-backend/internal/repository/order"
)

type cartRepo interface {
	GetActive(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
}

type orderCreator interface {
	CreateFromCart(ctx context.Context, in orderrepo.CheckoutInput) (*domain.Order, error)
}

type addressStore interface {
	GetByID(ctx context.Context, userID, id string) (*domain.ShippingAddress, error)
	Create(ctx context.Context, in addressrepo.CreateInput) (*domain.ShippingAddress, error)
}

// Service converts a cart into an order. Validation and address resolution
// happen up front; everything with correctness stakes (stock, prices, order
// rows, cart clearing) happens inside the repository's single transaction.
type Service struct {
	carts     cartRepo
	orders    orderCreator
	addresses addressStore
	policy    PricingPolicy
	logger    *log.Logger
}

func New(carts cartRepo, orders orderCreator, addresses addressStore, policy PricingPolicy, logger *log.Logger) *Service {
	if policy == nil {
		policy = FreeShipping{}
	}
	return &Service{carts: carts, orders: orders, addresses: addresses, policy: policy, logger: logger}
}

// NewAddress is a shipping destination supplied inline at checkout.
type NewAddress struct {
	FullName     string `json:"fullName"`
	PhoneNumber  string `json:"phoneNumber"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	PostalCode   string `json:"postalCode"`
}

// Input carries the checkout request: exactly one of ShippingAddressID or
// NewShippingAddress.
type Input struct {
	ShippingAddressID  string      `json:"shippingAddressId"`
	NewShippingAddress *NewAddress `json:"newShippingAddress"`
	Notes              string      `json:"notes"`
}

// Checkout places an order for the user's active cart. Exactly one order is
// created per successful call; a concurrent duplicate observes the cleared
// cart and fails with ErrEmptyCart.
func (s *Service) Checkout(ctx context.Context, userID string, in Input) (*domain.Order, error) {
	addr, err := s.resolveAddress(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetActive(ctx, domain.UserOwner(userID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	fee, discount, err := s.policy.Quote(ctx, addr)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.CreateFromCart(ctx, orderrepo.CheckoutInput{
		CartID:            cart.ID,
		UserID:            userID,
		ShippingAddressID: addr.ID,
		Notes:             in.Notes,
		ShippingFee:       fee,
		Discount:          discount,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Printf("order %s placed for user %s, total %s", order.ID, userID, order.TotalAmount)
	return order, nil
}

func (s *Service) resolveAddress(ctx context.Context, userID string, in Input) (*domain.ShippingAddress, error) {
	hasID := in.ShippingAddressID != ""
	hasNew := in.NewShippingAddress != nil

	switch {
	case hasID && hasNew:
		return nil, domain.Validation("provide either shippingAddressId or newShippingAddress, not both")
	case !hasID && !hasNew:
		return nil, domain.Validation("a shipping address is required")
	case hasID:
		return s.addresses.GetByID(ctx, userID, in.ShippingAddressID)
	}

	na := in.NewShippingAddress
	if na.FullName == "" || na.PhoneNumber == "" || na.AddressLine1 == "" || na.City == "" || na.Country == "" {
		return nil, domain.Validation("newShippingAddress requires fullName, phoneNumber, addressLine1, city and country")
	}
	return s.addresses.Create(ctx, addressrepo.CreateInput{
		UserID:       userID,
		FullName:     na.FullName,
		PhoneNumber:  na.PhoneNumber,
		AddressLine1: na.AddressLine1,
		AddressLine2: na.AddressLine2,
		City:         na.City,
		State:        na.State,
		Country:      na.Country,
		PostalCode:   na.PostalCode,
	})
}
