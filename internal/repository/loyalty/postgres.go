package loyalty

import (
	"context"
	"errors"

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

func (r *postgresRepo) Append(ctx context.Context, entry domain.PointTransaction) (*domain.PointTransaction, error) {
	const q = `
INSERT INTO point_transactions (user_id, points, transaction_type, description, reference)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
RETURNING id::text, created_at
`
	out := entry
	err := r.pool.QueryRow(ctx, q, entry.UserID, entry.Points, entry.Type, entry.Description, entry.Reference).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) SumPoints(ctx context.Context, userID string) (int, error) {
	const q = `
SELECT COALESCE(SUM(points), 0)
FROM point_transactions
WHERE user_id = $1
`
	var total int
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *postgresRepo) SetStanding(ctx context.Context, userID string, points int, tier domain.Tier) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE users
SET points = $1, tier = $2
WHERE id = $3
`, points, tier, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.PointTransaction, error) {
	const q = `
SELECT id::text, user_id::text, points, transaction_type, COALESCE(description, ''), COALESCE(reference, ''), created_at
FROM point_transactions
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PointTransaction
	for rows.Next() {
		var entry domain.PointTransaction
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Points, &entry.Type, &entry.Description, &entry.Reference, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
