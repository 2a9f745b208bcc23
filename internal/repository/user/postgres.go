package user

import (
	"context"
	"errors"

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

const userColumns = `
id::text, phone_number, password_hash, first_name, last_name, COALESCE(email, ''),
is_staff, points, tier, created_at
`

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	const q = `
INSERT INTO users (phone_number, password_hash, first_name, last_name, email)
VALUES ($1, $2, $3, $4, NULLIF($5, ''))
RETURNING ` + userColumns

	out, err := scanUser(r.pool.QueryRow(ctx, q, in.PhoneNumber, in.PasswordHash, in.FirstName, in.LastName, in.Email))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	out, err := scanUser(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByPhone(ctx context.Context, phoneNumber string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`
	out, err := scanUser(r.pool.QueryRow(ctx, q, phoneNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var out domain.User
	if err := row.Scan(
		&out.ID, &out.PhoneNumber, &out.PasswordHash, &out.FirstName, &out.LastName, &out.Email,
		&out.IsStaff, &out.Points, &out.Tier, &out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}
