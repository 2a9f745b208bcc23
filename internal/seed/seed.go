package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Name        string
	Description string
	SKU         string
	Price       string
	SalePrice   *string
	Stock       int
	Variants    []variantSeed
}

type variantSeed struct {
	Name            string
	SKU             string
	PriceAdjustment string
	Stock           int
}

func strPtr(s string) *string { return &s }

// Apply inserts demo catalog data and an admin user for manual testing. It is
// idempotent via ON CONFLICT on SKUs and the admin phone number.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			Name:        "Rose Petal Lip Tint",
			Description: "Buildable lip tint with a satin finish",
			SKU:         "JLN-LIP-001",
			Price:       "20.00",
			Stock:       50,
		},
		{
			Name:        "Hydra Glow Serum",
			Description: "Hyaluronic serum for daily hydration",
			SKU:         "JLN-SRM-001",
			Price:       "45.00",
			SalePrice:   strPtr("38.00"),
			Stock:       30,
		},
		{
			Name:        "Silk Matte Foundation",
			Description: "Lightweight matte foundation",
			SKU:         "JLN-FND-001",
			Price:       "35.00",
			Stock:       0,
			Variants: []variantSeed{
				{Name: "Shade 01 Porcelain", SKU: "JLN-FND-001-01", PriceAdjustment: "0", Stock: 25},
				{Name: "Shade 02 Ivory", SKU: "JLN-FND-001-02", PriceAdjustment: "0", Stock: 25},
				{Name: "Shade 05 Caramel", SKU: "JLN-FND-001-05", PriceAdjustment: "2.00", Stock: 15},
			},
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	if err := ensureAdmin(ctx, pool, "+15550000001", "changeme123"); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (name, description, sku, price, sale_price, stock)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    sale_price = EXCLUDED.sale_price
RETURNING id::text
`
	var productID string
	if err := pool.QueryRow(ctx, q, p.Name, p.Description, p.SKU, p.Price, p.SalePrice, p.Stock).Scan(&productID); err != nil {
		return err
	}

	for _, v := range p.Variants {
		if err := upsertVariant(ctx, pool, productID, v); err != nil {
			return fmt.Errorf("variant %s: %w", v.SKU, err)
		}
	}
	return nil
}

func upsertVariant(ctx context.Context, pool *pgxpool.Pool, productID string, v variantSeed) error {
	const q = `
INSERT INTO product_variants (product_id, name, sku, price_adjustment, stock)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    price_adjustment = EXCLUDED.price_adjustment
`
	_, err := pool.Exec(ctx, q, productID, v.Name, v.SKU, v.PriceAdjustment, v.Stock)
	return err
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, phone, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO users (phone_number, password_hash, first_name, is_staff)
VALUES ($1, $2, 'Admin', true)
ON CONFLICT (phone_number) DO NOTHING
`
	_, err = pool.Exec(ctx, q, phone, string(hashed))
	return err
}
