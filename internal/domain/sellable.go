package domain

import "github.com/shopspring/decimal"

// SellableKind distinguishes base products from product variants.
type SellableKind string

const (
	SellableProduct SellableKind = "product"
	SellableVariant SellableKind = "variant"
)

// SellableRef identifies the unit of purchase: either a product or one of its
// variants, never both.
type SellableRef struct {
	Kind SellableKind `json:"kind"`
	ID   string       `json:"id"`
}

func ProductRef(id string) SellableRef { return SellableRef{Kind: SellableProduct, ID: id} }
func VariantRef(id string) SellableRef { return SellableRef{Kind: SellableVariant, ID: id} }

// SellableItem is a point-in-time view of a sellable ref from the catalog.
// Stock is authoritative only inside the checkout transaction.
type SellableItem struct {
	Ref       SellableRef
	Name      string
	SKU       string
	Active    bool
	UnitPrice decimal.Decimal
	Stock     int
}
