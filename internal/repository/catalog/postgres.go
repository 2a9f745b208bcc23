package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"joulina-backend/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetSellable(ctx context.Context, ref domain.SellableRef) (*domain.SellableItem, error) {
	switch ref.Kind {
	case domain.SellableProduct:
		return r.getProduct(ctx, ref.ID)
	case domain.SellableVariant:
		return r.getVariant(ctx, ref.ID)
	default:
		return nil, domain.Validation("unknown sellable kind %q", ref.Kind)
	}
}

func (r *postgresRepo) getProduct(ctx context.Context, id string) (*domain.SellableItem, error) {
	const q = `
SELECT id::text, name, COALESCE(sku, ''), is_active, COALESCE(sale_price, price), stock
FROM products
WHERE id = $1
`
	var item domain.SellableItem
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&item.Ref.ID,
		&item.Name,
		&item.SKU,
		&item.Active,
		&item.UnitPrice,
		&item.Stock,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	item.Ref.Kind = domain.SellableProduct
	return &item, nil
}

func (r *postgresRepo) getVariant(ctx context.Context, id string) (*domain.SellableItem, error) {
	// Variant price = base product price + adjustment, resolved at read time.
	const q = `
SELECT v.id::text, p.name || ' - ' || v.name, v.sku,
       v.is_active AND p.is_active,
       COALESCE(p.sale_price, p.price) + v.price_adjustment,
       v.stock
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.id = $1
`
	var item domain.SellableItem
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&item.Ref.ID,
		&item.Name,
		&item.SKU,
		&item.Active,
		&item.UnitPrice,
		&item.Stock,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	item.Ref.Kind = domain.SellableVariant
	return &item, nil
}

func (r *postgresRepo) CreateProduct(ctx context.Context, in CreateProductInput) (string, error) {
	const q = `
INSERT INTO products (name, description, price, sale_price, sku, stock, is_active)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
RETURNING id::text
`
	var id string
	err := r.pool.QueryRow(ctx, q, in.Name, in.Description, in.Price, in.SalePrice, in.SKU, in.Stock, in.Active).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", domain.ErrAlreadyExists
		}
		return "", err
	}
	return id, nil
}

func (r *postgresRepo) CreateVariant(ctx context.Context, in CreateVariantInput) (string, error) {
	const q = `
INSERT INTO product_variants (product_id, name, sku, price_adjustment, stock, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text
`
	var id string
	err := r.pool.QueryRow(ctx, q, in.ProductID, in.Name, in.SKU, in.PriceAdjustment, in.Stock, in.Active).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", domain.ErrAlreadyExists
		}
		return "", err
	}
	return id, nil
}

// AdjustStock applies a manual stock movement and records it in the
// inventory log. Negative deltas fail rather than drive stock below zero.
func (r *postgresRepo) AdjustStock(ctx context.Context, ref domain.SellableRef, delta int, adj domain.InventoryAdjustment, reference string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var table string
	switch ref.Kind {
	case domain.SellableProduct:
		table = "products"
	case domain.SellableVariant:
		table = "product_variants"
	default:
		return domain.Validation("unknown sellable kind %q", ref.Kind)
	}

	q := fmt.Sprintf(`UPDATE %s SET stock = stock + $1 WHERE id = $2 AND stock + $1 >= 0`, table)
	cmd, err := tx.Exec(ctx, q, delta, ref.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// Either the item does not exist or the delta would drive stock
		// negative; re-read to tell the two apart.
		var available int
		read := fmt.Sprintf(`SELECT stock FROM %s WHERE id = $1`, table)
		if err := tx.QueryRow(ctx, read, ref.ID).Scan(&available); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		return &domain.InsufficientStockError{Available: available}
	}

	if err := appendInventoryLog(ctx, tx, ref, delta, adj, reference); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func appendInventoryLog(ctx context.Context, tx pgx.Tx, ref domain.SellableRef, qty int, adj domain.InventoryAdjustment, reference string) error {
	const q = `
INSERT INTO inventory_logs (product_id, variant_id, quantity, adjustment_type, reference)
VALUES ($1, $2, $3, $4, NULLIF($5, ''))
`
	var productID, variantID *string
	if ref.Kind == domain.SellableProduct {
		productID = &ref.ID
	} else {
		variantID = &ref.ID
	}
	_, err := tx.Exec(ctx, q, productID, variantID, qty, adj, reference)
	return err
}
