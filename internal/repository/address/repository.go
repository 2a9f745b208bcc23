package address

import (
	"context"

	"joulina-backend/internal/domain"
)

type CreateInput struct {
	UserID       string
	FullName     string
	PhoneNumber  string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Country      string
	PostalCode   string
	IsDefault    bool
}

// Repository owns shipping addresses. All lookups are scoped to the owning
// user; at most one address per user is the default.
type Repository interface {
	Create(ctx context.Context, in CreateInput) (*domain.ShippingAddress, error)
	GetByID(ctx context.Context, userID, id string) (*domain.ShippingAddress, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ShippingAddress, error)
	Update(ctx context.Context, userID, id string, in CreateInput) (*domain.ShippingAddress, error)
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}
