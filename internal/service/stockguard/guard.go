package stockguard

import (
	"context"

	"joulina-backend/internal/domain"
)

type catalogReader interface {
	GetSellable(ctx context.Context, ref domain.SellableRef) (*domain.SellableItem, error)
}

// Guard enforces "never sell more than available" against a fresh catalog
// read. On the cart path the check is advisory: nothing is reserved, stock
// is only decremented at checkout, where the same rule is applied
// authoritatively inside the transaction.
type Guard struct {
	catalog catalogReader
}

func New(catalog catalogReader) *Guard {
	return &Guard{catalog: catalog}
}

// Reserve validates that the sellable is active and has at least quantity in
// stock, returning the fresh item so callers can reuse its price. An
// inactive or missing item behaves as absent, not as a stock error.
func (g *Guard) Reserve(ctx context.Context, ref domain.SellableRef, quantity int) (*domain.SellableItem, error) {
	if quantity < 1 {
		return nil, domain.Validation("quantity must be at least 1")
	}

	item, err := g.catalog.GetSellable(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !item.Active {
		return nil, domain.ErrNotFound
	}
	if item.Stock < quantity {
		return nil, &domain.InsufficientStockError{Available: item.Stock}
	}
	return item, nil
}
