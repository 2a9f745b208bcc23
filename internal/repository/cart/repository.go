package cart

import (
	"context"

	"joulina-backend/internal/domain"
)

// Repository owns cart and cart line rows. GetOrCreate must resolve a race
// between two first mutations for the same owner to a single surviving row.
type Repository interface {
	GetOrCreate(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	GetActive(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	SetLineQuantity(ctx context.Context, cartID string, ref domain.SellableRef, quantity int) error
	UpdateLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	DeleteLine(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
	Merge(ctx context.Context, sessionCartID, userCartID string) error
}
