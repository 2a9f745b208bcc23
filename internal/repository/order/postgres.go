package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"joulina-backend/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// checkoutLine is a cart line re-read inside the checkout transaction with a
// fresh price from the catalog.
type checkoutLine struct {
	ref       domain.SellableRef
	name      string
	quantity  int
	unitPrice decimal.Decimal
}

func (r *postgresRepo) CreateFromCart(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lines, err := lockCartLines(ctx, tx, in.CartID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if err := decrementStock(ctx, tx, line.ref, line.quantity); err != nil {
			return nil, err
		}
		subtotal = subtotal.Add(line.unitPrice.Mul(decimal.NewFromInt(int64(line.quantity))))
	}

	total := subtotal.Add(in.ShippingFee).Sub(in.Discount)

	const insertOrder = `
INSERT INTO orders (user_id, shipping_address_id, status, payment_method, subtotal, shipping_fee, discount, total_amount, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
RETURNING id::text, created_at, updated_at
`
	out := domain.Order{
		UserID:            in.UserID,
		ShippingAddressID: in.ShippingAddressID,
		Status:            domain.StatusPending,
		PaymentMethod:     domain.PaymentCashOnDelivery,
		Subtotal:          subtotal,
		ShippingFee:       in.ShippingFee,
		Discount:          in.Discount,
		TotalAmount:       total,
		Notes:             in.Notes,
	}
	if err := tx.QueryRow(ctx, insertOrder,
		in.UserID, in.ShippingAddressID, domain.StatusPending, domain.PaymentCashOnDelivery,
		subtotal, in.ShippingFee, in.Discount, total, in.Notes,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}

	reference := domain.OrderReference(out.ID)
	for _, line := range lines {
		item, err := insertOrderItem(ctx, tx, out.ID, line)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, item)

		if err := appendInventoryLog(ctx, tx, line.ref, -line.quantity, domain.StockOut, reference); err != nil {
			return nil, err
		}
	}

	entry, err := appendHistory(ctx, tx, out.ID, domain.StatusPending, "Order placed")
	if err != nil {
		return nil, err
	}
	out.History = []domain.OrderStatusEntry{entry}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, in.CartID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

// lockCartLines re-reads the cart with current prices, locking the line rows
// so two concurrent checkouts of the same cart serialize here.
func lockCartLines(ctx context.Context, tx pgx.Tx, cartID string) ([]checkoutLine, error) {
	const q = `
SELECT l.product_id::text, l.variant_id::text, l.quantity,
       COALESCE(p.name, bp.name || ' - ' || v.name),
       COALESCE(COALESCE(p.sale_price, p.price), COALESCE(bp.sale_price, bp.price) + v.price_adjustment)
FROM cart_lines l
LEFT JOIN products p ON p.id = l.product_id
LEFT JOIN product_variants v ON v.id = l.variant_id
LEFT JOIN products bp ON bp.id = v.product_id
WHERE l.cart_id = $1
ORDER BY l.created_at ASC
FOR UPDATE OF l
`
	rows, err := tx.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []checkoutLine
	for rows.Next() {
		var (
			line      checkoutLine
			productID *string
			variantID *string
		)
		if err := rows.Scan(&productID, &variantID, &line.quantity, &line.name, &line.unitPrice); err != nil {
			return nil, err
		}
		if productID != nil {
			line.ref = domain.ProductRef(*productID)
		} else if variantID != nil {
			line.ref = domain.VariantRef(*variantID)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// decrementStock is the authoritative stock check: an atomic conditional
// decrement that either takes the full quantity or touches nothing.
func decrementStock(ctx context.Context, tx pgx.Tx, ref domain.SellableRef, qty int) error {
	var (
		update string
		read   string
	)
	switch ref.Kind {
	case domain.SellableProduct:
		update = `UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`
		read = `SELECT stock FROM products WHERE id = $1`
	case domain.SellableVariant:
		update = `UPDATE product_variants SET stock = stock - $1 WHERE id = $2 AND stock >= $1`
		read = `SELECT stock FROM product_variants WHERE id = $1`
	default:
		return domain.Validation("unknown sellable kind %q", ref.Kind)
	}

	cmd, err := tx.Exec(ctx, update, qty, ref.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var available int
	if err := tx.QueryRow(ctx, read, ref.ID).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return &domain.InsufficientStockError{Available: available}
}

func insertOrderItem(ctx context.Context, tx pgx.Tx, orderID string, line checkoutLine) (domain.OrderItem, error) {
	const q = `
INSERT INTO order_items (order_id, product_id, variant_id, item_name, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text
`
	item := domain.OrderItem{
		OrderID:   orderID,
		Item:      line.ref,
		ItemName:  line.name,
		Quantity:  line.quantity,
		UnitPrice: line.unitPrice,
		Subtotal:  line.unitPrice.Mul(decimal.NewFromInt(int64(line.quantity))),
	}
	var productID, variantID *string
	if line.ref.Kind == domain.SellableProduct {
		productID = &line.ref.ID
	} else {
		variantID = &line.ref.ID
	}
	if err := tx.QueryRow(ctx, q, orderID, productID, variantID, line.name, line.quantity, item.UnitPrice, item.Subtotal).Scan(&item.ID); err != nil {
		return domain.OrderItem{}, err
	}
	return item, nil
}

func appendHistory(ctx context.Context, tx pgx.Tx, orderID string, status domain.OrderStatus, notes string) (domain.OrderStatusEntry, error) {
	const q = `
INSERT INTO order_status_history (order_id, status, notes)
VALUES ($1, $2, NULLIF($3, ''))
RETURNING id::text, created_at
`
	entry := domain.OrderStatusEntry{OrderID: orderID, Status: status, Notes: notes}
	if err := tx.QueryRow(ctx, q, orderID, status, notes).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return domain.OrderStatusEntry{}, err
	}
	return entry, nil
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

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, user_id::text, shipping_address_id::text, status, payment_method,
       subtotal, shipping_fee, discount, total_amount,
       COALESCE(notes, ''), COALESCE(tracking_number, ''), is_paid, created_at, updated_at
FROM orders
WHERE id = $1
`
	var out domain.Order
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.UserID, &out.ShippingAddressID, &out.Status, &out.PaymentMethod,
		&out.Subtotal, &out.ShippingFee, &out.Discount, &out.TotalAmount,
		&out.Notes, &out.TrackingNumber, &out.IsPaid, &out.CreatedAt, &out.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	items, err := r.fetchItems(ctx, id)
	if err != nil {
		return nil, err
	}
	out.Items = items

	history, err := r.fetchHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	out.History = history

	return &out, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = `
SELECT id::text, user_id::text, shipping_address_id::text, status, payment_method,
       subtotal, shipping_fee, discount, total_amount,
       COALESCE(notes, ''), COALESCE(tracking_number, ''), is_paid, created_at, updated_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var out domain.Order
		if err := rows.Scan(
			&out.ID, &out.UserID, &out.ShippingAddressID, &out.Status, &out.PaymentMethod,
			&out.Subtotal, &out.ShippingFee, &out.Discount, &out.TotalAmount,
			&out.Notes, &out.TrackingNumber, &out.IsPaid, &out.CreatedAt, &out.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, out)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves the order from one status to another as a conditional
// update. A concurrent transition that changed the row first makes the WHERE
// clause miss and the caller gets ErrInvalidTransition instead of silently
// skipping a state.
func (r *postgresRepo) UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus, notes string, markPaid bool) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE orders
SET status = $1, is_paid = is_paid OR $2, updated_at = now()
WHERE id = $3 AND status = $4
`, to, markPaid, orderID, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.transitionConflict(ctx, tx, orderID, to)
	}

	if _, err := appendHistory(ctx, tx, orderID, to, notes); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CancelAndRestock flips the order to cancelled and returns every item's
// quantity to stock, all in one transaction. The status condition lives in
// the UPDATE itself so two racing cancels cannot both restock: the loser's
// WHERE clause misses and nothing is written.
func (r *postgresRepo) CancelAndRestock(ctx context.Context, orderID string, notes string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE orders
SET status = $1, updated_at = now()
WHERE id = $2 AND status IN ($3, $4)
`, domain.StatusCancelled, orderID, domain.StatusPending, domain.StatusConfirmed)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.transitionConflict(ctx, tx, orderID, domain.StatusCancelled)
	}

	items, err := r.fetchItems(ctx, orderID)
	if err != nil {
		return err
	}

	reference := domain.OrderReference(orderID)
	for _, item := range items {
		var restock string
		if item.Item.Kind == domain.SellableProduct {
			restock = `UPDATE products SET stock = stock + $1 WHERE id = $2`
		} else {
			restock = `UPDATE product_variants SET stock = stock + $1 WHERE id = $2`
		}
		if _, err := tx.Exec(ctx, restock, item.Quantity, item.Item.ID); err != nil {
			return err
		}
		if err := appendInventoryLog(ctx, tx, item.Item, item.Quantity, domain.StockReturned, reference); err != nil {
			return err
		}
	}

	if _, err := appendHistory(ctx, tx, orderID, domain.StatusCancelled, notes); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// transitionConflict reports why a conditional status UPDATE matched no row:
// the order is gone, or its status already moved on.
func (r *postgresRepo) transitionConflict(ctx context.Context, tx pgx.Tx, orderID string, to domain.OrderStatus) error {
	var current domain.OrderStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, current, to)
}

func (r *postgresRepo) fetchItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const q = `
SELECT id::text, order_id::text, product_id::text, variant_id::text, item_name, quantity, unit_price, subtotal
FROM order_items
WHERE order_id = $1
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item      domain.OrderItem
			productID *string
			variantID *string
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &productID, &variantID, &item.ItemName, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, err
		}
		if productID != nil {
			item.Item = domain.ProductRef(*productID)
		} else if variantID != nil {
			item.Item = domain.VariantRef(*variantID)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresRepo) fetchHistory(ctx context.Context, orderID string) ([]domain.OrderStatusEntry, error) {
	const q = `
SELECT id::text, order_id::text, status, COALESCE(notes, ''), created_at
FROM order_status_history
WHERE order_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.OrderStatusEntry
	for rows.Next() {
		var entry domain.OrderStatusEntry
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.Status, &entry.Notes, &entry.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}
