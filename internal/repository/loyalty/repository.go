package loyalty

import (
	"context"

	"joulina-backend/internal/domain"
)

// Repository owns the point ledger and the user's running standing.
// Append returns domain.ErrAlreadyExists when an entry with the same
// (reference, type) pair was written before; callers treat that as "already
// credited" and move on.
type Repository interface {
	Append(ctx context.Context, entry domain.PointTransaction) (*domain.PointTransaction, error)
	SumPoints(ctx context.Context, userID string) (int, error)
	SetStanding(ctx context.Context, userID string, points int, tier domain.Tier) error
	ListByUser(ctx context.Context, userID string) ([]domain.PointTransaction, error)
}
