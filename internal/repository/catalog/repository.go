package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"joulina-backend/internal/domain"
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	SalePrice   *decimal.Decimal
	SKU         string
	Stock       int
	Active      bool
}

type CreateVariantInput struct {
	ProductID       string
	Name            string
	SKU             string
	PriceAdjustment decimal.Decimal
	Stock           int
	Active          bool
}

// Repository reads sellable items and maintains catalog rows. Stock is only
// decremented inside the checkout transaction, which lives in the order
// repository; this package covers reads and ingestion.
type Repository interface {
	GetSellable(ctx context.Context, ref domain.SellableRef) (*domain.SellableItem, error)
	CreateProduct(ctx context.Context, in CreateProductInput) (string, error)
	CreateVariant(ctx context.Context, in CreateVariantInput) (string, error)
	AdjustStock(ctx context.Context, ref domain.SellableRef, delta int, adj domain.InventoryAdjustment, reference string) error
}
