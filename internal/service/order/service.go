package order

import (
	"context"
	"fmt"
	"log"

	"joulina-backend/internal/domain"
)

type orderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus, notes string, markPaid bool) error
	CancelAndRestock(ctx context.Context, orderID string, notes string) error
}

type accruer interface {
	Accrue(ctx context.Context, order *domain.Order) error
}

// Service exposes order reads and drives the status state machine. Loyalty
// accrual hangs off the delivered transition as an explicit call, not a
// storage-layer hook.
type Service struct {
	repo    orderRepo
	loyalty accruer
	logger  *log.Logger
}

func New(repo orderRepo, loyalty accruer, logger *log.Logger) *Service {
	return &Service{repo: repo, loyalty: loyalty, logger: logger}
}

// Get returns an order visible to the caller: owners see their own orders,
// staff see everything.
func (s *Service) Get(ctx context.Context, userID string, isStaff bool, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isStaff && order.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// List returns the caller's orders, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Cancel lets the owner cancel an order that has not entered fulfilment.
// Stock is returned as part of the same transaction.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if !order.Status.Cancellable() {
		return nil, domain.Validation("cannot cancel order in %s status", order.Status)
	}

	if err := s.repo.CancelAndRestock(ctx, orderID, "Order cancelled by customer"); err != nil {
		return nil, err
	}

	s.logger.Printf("order %s cancelled by user %s", orderID, userID)
	return s.repo.GetByID(ctx, orderID)
}

// Transition moves an order along the status machine (staff operation).
// Reaching delivered marks the cash-on-delivery order paid and triggers
// loyalty accrual; the accrual's idempotency key absorbs repeat fires.
func (s *Service) Transition(ctx context.Context, orderID string, status domain.OrderStatus, notes string) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.Validation("unknown status %q", status)
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, order.Status, status)
	}

	if status == domain.StatusCancelled {
		if err := s.repo.CancelAndRestock(ctx, orderID, notes); err != nil {
			return nil, err
		}
		return s.repo.GetByID(ctx, orderID)
	}

	delivered := status == domain.StatusDelivered
	if err := s.repo.UpdateStatus(ctx, orderID, order.Status, status, notes, delivered); err != nil {
		return nil, err
	}

	order, err = s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if delivered {
		if err := s.loyalty.Accrue(ctx, order); err != nil {
			s.logger.Printf("accrue points for order %s: %v", orderID, err)
			return nil, fmt.Errorf("accrue points: %w", err)
		}
	}

	return order, nil
}
