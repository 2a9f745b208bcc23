package loyalty

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"joulina-backend/internal/domain"
)

type ledgerRepo interface {
	Append(ctx context.Context, entry domain.PointTransaction) (*domain.PointTransaction, error)
	SumPoints(ctx context.Context, userID string) (int, error)
	SetStanding(ctx context.Context, userID string, points int, tier domain.Tier) error
	ListByUser(ctx context.Context, userID string) ([]domain.PointTransaction, error)
}

type userReader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Service grants loyalty points for delivered orders and keeps the user's
// running total and tier in step with the ledger.
type Service struct {
	ledger ledgerRepo
	users  userReader
	logger *log.Logger
}

func New(ledger ledgerRepo, users userReader, logger *log.Logger) *Service {
	return &Service{ledger: ledger, users: users, logger: logger}
}

// Accrue credits points for a delivered order: one point per whole currency
// unit spent, scaled by the user's tier multiplier. The order's ledger
// reference makes a second call a no-op.
func (s *Service) Accrue(ctx context.Context, order *domain.Order) error {
	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("load user %s: %w", order.UserID, err)
	}

	base := order.TotalAmount.IntPart()
	if base <= 0 {
		return nil
	}
	points := int(decimal.NewFromInt(base).Mul(user.Tier.Multiplier()).IntPart())

	_, err = s.ledger.Append(ctx, domain.PointTransaction{
		UserID:      order.UserID,
		Points:      points,
		Type:        domain.PointsEarned,
		Description: fmt.Sprintf("Points earned from order %s", order.ID),
		Reference:   domain.OrderReference(order.ID),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Already credited for this order.
			return nil
		}
		return fmt.Errorf("append earned entry: %w", err)
	}

	if err := s.recompute(ctx, user); err != nil {
		return err
	}

	s.logger.Printf("granted %d points to user %s for order %s", points, order.UserID, order.ID)
	return nil
}

// History returns the user's ledger, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]domain.PointTransaction, error) {
	return s.ledger.ListByUser(ctx, userID)
}

// recompute derives the running total and tier from the ledger. Celebrity is
// manually assigned and never overwritten by the threshold function.
func (s *Service) recompute(ctx context.Context, user *domain.User) error {
	total, err := s.ledger.SumPoints(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("sum points: %w", err)
	}
	if total < 0 {
		total = 0
	}

	tier := user.Tier
	if tier != domain.TierCelebrity {
		tier = domain.TierForPoints(total)
	}

	if err := s.ledger.SetStanding(ctx, user.ID, total, tier); err != nil {
		return fmt.Errorf("update standing: %w", err)
	}
	return nil
}
