package address

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"joulina-backend/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const addressColumns = `
id::text, user_id::text, full_name, phone_number, address_line1, COALESCE(address_line2, ''),
city, state, country, postal_code, is_default, created_at, updated_at
`

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.ShippingAddress, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The first address becomes the default; an explicit default unsets the
	// previous one.
	var existing int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM shipping_addresses WHERE user_id = $1`, in.UserID).Scan(&existing); err != nil {
		return nil, err
	}
	isDefault := in.IsDefault || existing == 0
	if isDefault {
		if _, err := tx.Exec(ctx, `UPDATE shipping_addresses SET is_default = false WHERE user_id = $1 AND is_default`, in.UserID); err != nil {
			return nil, err
		}
	}

	const q = `
INSERT INTO shipping_addresses (user_id, full_name, phone_number, address_line1, address_line2, city, state, country, postal_code, is_default)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10)
RETURNING ` + addressColumns

	out, err := scanAddress(tx.QueryRow(ctx, q,
		in.UserID, in.FullName, in.PhoneNumber, in.AddressLine1, in.AddressLine2,
		in.City, in.State, in.Country, in.PostalCode, isDefault,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, userID, id string) (*domain.ShippingAddress, error) {
	const q = `SELECT ` + addressColumns + ` FROM shipping_addresses WHERE id = $1 AND user_id = $2`
	out, err := scanAddress(r.pool.QueryRow(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.ShippingAddress, error) {
	const q = `SELECT ` + addressColumns + ` FROM shipping_addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at ASC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []domain.ShippingAddress
	for rows.Next() {
		out, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, *out)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *postgresRepo) Update(ctx context.Context, userID, id string, in CreateInput) (*domain.ShippingAddress, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if in.IsDefault {
		if _, err := tx.Exec(ctx, `UPDATE shipping_addresses SET is_default = false WHERE user_id = $1 AND is_default AND id <> $2`, userID, id); err != nil {
			return nil, err
		}
	}

	const q = `
UPDATE shipping_addresses
SET full_name = $1, phone_number = $2, address_line1 = $3, address_line2 = NULLIF($4, ''),
    city = $5, state = $6, country = $7, postal_code = $8,
    is_default = is_default OR $9, updated_at = now()
WHERE id = $10 AND user_id = $11
RETURNING ` + addressColumns

	out, err := scanAddress(tx.QueryRow(ctx, q,
		in.FullName, in.PhoneNumber, in.AddressLine1, in.AddressLine2,
		in.City, in.State, in.Country, in.PostalCode, in.IsDefault,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM shipping_addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetDefault(ctx context.Context, userID, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE shipping_addresses SET is_default = false WHERE user_id = $1 AND is_default`, userID); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `UPDATE shipping_addresses SET is_default = true, updated_at = now() WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit(ctx)
}

func scanAddress(row pgx.Row) (*domain.ShippingAddress, error) {
	var out domain.ShippingAddress
	if err := row.Scan(
		&out.ID, &out.UserID, &out.FullName, &out.PhoneNumber, &out.AddressLine1, &out.AddressLine2,
		&out.City, &out.State, &out.Country, &out.PostalCode, &out.IsDefault, &out.CreatedAt, &out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}
