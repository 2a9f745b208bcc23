package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"joulina-backend/internal/domain"
)

// PricingPolicy computes the shipping fee and discount applied on top of the
// cart subtotal. Kept pluggable so zone-based shipping or promotions can be
// swapped in without touching the orchestration.
type PricingPolicy interface {
	Quote(ctx context.Context, addr *domain.ShippingAddress) (fee, discount decimal.Decimal, err error)
}

// FreeShipping charges nothing and discounts nothing, the default policy.
type FreeShipping struct{}

func (FreeShipping) Quote(context.Context, *domain.ShippingAddress) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.Zero, decimal.Zero, nil
}
