package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"joulina-backend/internal/domain"
)

// createRetries bounds the retry loop when two requests race to create the
// same owner's cart and one loses on the partial unique index.
const createRetries = 3

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetOrCreate(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	for attempt := 0; attempt < createRetries; attempt++ {
		cart, err := r.GetActive(ctx, owner)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		cart, err = r.create(ctx, owner)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		// Lost the creation race; the winner's row is now visible.
	}
	return nil, domain.ErrAlreadyExists
}

func (r *postgresRepo) create(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id, session_key)
VALUES (NULLIF($1, '')::uuid, NULLIF($2, ''))
RETURNING id::text, user_id::text, session_key, merged, created_at
`
	cart, err := scanCart(r.pool.QueryRow(ctx, q, owner.UserID, owner.SessionKey))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	cart.Lines = nil
	return cart, nil
}

func (r *postgresRepo) GetActive(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	var (
		q   string
		arg string
	)
	switch {
	case owner.UserID != "":
		q = `
SELECT id::text, user_id::text, session_key, merged, created_at
FROM carts
WHERE user_id = $1 AND NOT merged
`
		arg = owner.UserID
	case owner.SessionKey != "":
		q = `
SELECT id::text, user_id::text, session_key, merged, created_at
FROM carts
WHERE session_key = $1 AND user_id IS NULL AND NOT merged
`
		arg = owner.SessionKey
	default:
		return nil, domain.Validation("cart owner required")
	}

	cart, err := scanCart(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.fetchLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Lines = lines
	return cart, nil
}

// SetLineQuantity upserts the (cart, sellable) line to an absolute quantity.
// The caller has already validated the quantity against stock.
func (r *postgresRepo) SetLineQuantity(ctx context.Context, cartID string, ref domain.SellableRef, quantity int) error {
	var q string
	switch ref.Kind {
	case domain.SellableProduct:
		q = `
INSERT INTO cart_lines (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id) WHERE product_id IS NOT NULL
DO UPDATE SET quantity = EXCLUDED.quantity
`
	case domain.SellableVariant:
		q = `
INSERT INTO cart_lines (cart_id, variant_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, variant_id) WHERE variant_id IS NOT NULL
DO UPDATE SET quantity = EXCLUDED.quantity
`
	default:
		return domain.Validation("unknown sellable kind %q", ref.Kind)
	}
	_, err := r.pool.Exec(ctx, q, cartID, ref.ID, quantity)
	return err
}

func (r *postgresRepo) UpdateLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error {
	const q = `
UPDATE cart_lines
SET quantity = $1
WHERE id = $2 AND cart_id = $3
`
	cmd, err := r.pool.Exec(ctx, q, quantity, lineID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteLine is a no-op when the line does not belong to this cart.
func (r *postgresRepo) DeleteLine(ctx context.Context, cartID, lineID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1 AND cart_id = $2`, lineID, cartID)
	return err
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID)
	return err
}

// Merge folds the session cart into the user cart in one transaction: same
// sellable sums quantities, everything else moves over, and the session cart
// is marked merged so repeated login events are no-ops.
func (r *postgresRepo) Merge(ctx context.Context, sessionCartID, userCartID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Guard against a concurrent merge of the same session cart.
	var merged bool
	err = tx.QueryRow(ctx, `SELECT merged FROM carts WHERE id = $1 FOR UPDATE`, sessionCartID).Scan(&merged)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if merged {
		return tx.Commit(ctx)
	}

	const upsert = `
INSERT INTO cart_lines (cart_id, product_id, variant_id, quantity)
SELECT $1, product_id, variant_id, quantity
FROM cart_lines
WHERE cart_id = $2 AND product_id IS NOT NULL
ON CONFLICT (cart_id, product_id) WHERE product_id IS NOT NULL
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
`
	if _, err := tx.Exec(ctx, upsert, userCartID, sessionCartID); err != nil {
		return err
	}

	const upsertVariants = `
INSERT INTO cart_lines (cart_id, product_id, variant_id, quantity)
SELECT $1, product_id, variant_id, quantity
FROM cart_lines
WHERE cart_id = $2 AND variant_id IS NOT NULL
ON CONFLICT (cart_id, variant_id) WHERE variant_id IS NOT NULL
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
`
	if _, err := tx.Exec(ctx, upsertVariants, userCartID, sessionCartID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, sessionCartID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET merged = true WHERE id = $1`, sessionCartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) fetchLines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	const q = `
SELECT id::text, cart_id::text, product_id::text, variant_id::text, quantity, created_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var (
			line      domain.CartLine
			productID *string
			variantID *string
		)
		if err := rows.Scan(&line.ID, &line.CartID, &productID, &variantID, &line.Quantity, &line.CreatedAt); err != nil {
			return nil, err
		}
		if productID != nil {
			line.Item = domain.ProductRef(*productID)
		} else if variantID != nil {
			line.Item = domain.VariantRef(*variantID)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	var userID, sessionKey *string
	if err := row.Scan(&cart.ID, &userID, &sessionKey, &cart.Merged, &cart.CreatedAt); err != nil {
		return nil, err
	}
	cart.UserID = userID
	cart.SessionKey = sessionKey
	return &cart, nil
}
