package merge

import (
	"context"
	"errors"
	"log"

	"joulina-backend/internal/domain"
)

type cartRepo interface {
	GetOrCreate(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	GetActive(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	Merge(ctx context.Context, sessionCartID, userCartID string) error
}

// Service folds an anonymous session cart into the user's cart at login.
// Quantities are not validated against stock here; checkout re-validates and
// is the single stock authority.
type Service struct {
	repo   cartRepo
	logger *log.Logger
}

func New(repo cartRepo, logger *log.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Merge runs once per login, before any other cart operation for the
// request. No session cart is a no-op, as is a session cart that was already
// merged by an earlier login event.
func (s *Service) Merge(ctx context.Context, sessionKey, userID string) error {
	if sessionKey == "" {
		return nil
	}

	sessionCart, err := s.repo.GetActive(ctx, domain.SessionOwner(sessionKey))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if sessionCart.Merged {
		return nil
	}

	userCart, err := s.repo.GetOrCreate(ctx, domain.UserOwner(userID))
	if err != nil {
		return err
	}

	if err := s.repo.Merge(ctx, sessionCart.ID, userCart.ID); err != nil {
		return err
	}

	s.logger.Printf("merged session cart %s into user cart %s", sessionCart.ID, userCart.ID)
	return nil
}
