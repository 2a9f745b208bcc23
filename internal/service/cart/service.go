package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"joulina-backend/internal/domain"
)

type cartRepo interface {
	GetOrCreate(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	GetActive(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	SetLineQuantity(ctx context.Context, cartID string, ref domain.SellableRef, quantity int) error
	UpdateLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	DeleteLine(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
}

type stockGuard interface {
	Reserve(ctx context.Context, ref domain.SellableRef, quantity int) (*domain.SellableItem, error)
}

type catalogReader interface {
	GetSellable(ctx context.Context, ref domain.SellableRef) (*domain.SellableItem, error)
}

// Service owns the cart lifecycle for anonymous and authenticated owners.
// Every mutation returns the resulting snapshot so clients never need a
// follow-up read.
type Service struct {
	repo    cartRepo
	guard   stockGuard
	catalog catalogReader
}

func New(repo cartRepo, guard stockGuard, catalog catalogReader) *Service {
	return &Service{repo: repo, guard: guard, catalog: catalog}
}

// Snapshot prices the cart live against the catalog. A missing cart yields
// an empty snapshot, never an error.
func (s *Service) Snapshot(ctx context.Context, owner domain.CartOwner) (domain.CartSnapshot, error) {
	cart, err := s.repo.GetActive(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.EmptySnapshot(), nil
		}
		return domain.CartSnapshot{}, err
	}
	return s.snapshotCart(ctx, cart)
}

// AddItem adds quantity of the sellable to the owner's cart, creating the
// cart lazily. Adding an item already in the cart grows the existing line;
// the summed quantity is validated against current stock and rejected, not
// clamped, when it exceeds it.
func (s *Service) AddItem(ctx context.Context, owner domain.CartOwner, ref domain.SellableRef, quantity int) (domain.CartSnapshot, error) {
	if quantity < 1 {
		return domain.CartSnapshot{}, domain.Validation("quantity must be at least 1")
	}

	cart, err := s.repo.GetOrCreate(ctx, owner)
	if err != nil {
		return domain.CartSnapshot{}, err
	}

	desired := quantity
	if line := cart.LineFor(ref); line != nil {
		desired += line.Quantity
	}

	if _, err := s.guard.Reserve(ctx, ref, desired); err != nil {
		return domain.CartSnapshot{}, err
	}

	if err := s.repo.SetLineQuantity(ctx, cart.ID, ref, desired); err != nil {
		return domain.CartSnapshot{}, err
	}

	return s.refresh(ctx, owner)
}

// UpdateLine sets an existing line to an absolute quantity. A line id not in
// this cart is NotFound regardless of whether it exists elsewhere.
func (s *Service) UpdateLine(ctx context.Context, owner domain.CartOwner, lineID string, quantity int) (domain.CartSnapshot, error) {
	if quantity < 1 {
		return domain.CartSnapshot{}, domain.Validation("quantity must be at least 1")
	}

	cart, err := s.repo.GetActive(ctx, owner)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	line := cart.LineByID(lineID)
	if line == nil {
		return domain.CartSnapshot{}, domain.ErrNotFound
	}

	if _, err := s.guard.Reserve(ctx, line.Item, quantity); err != nil {
		return domain.CartSnapshot{}, err
	}

	if err := s.repo.UpdateLineQuantity(ctx, cart.ID, lineID, quantity); err != nil {
		return domain.CartSnapshot{}, err
	}

	return s.refresh(ctx, owner)
}

// RemoveLine deletes a line. Removing a line that is not in the cart is a
// no-op success: the caller gets the unchanged snapshot and learns nothing
// about other carts' line ids.
func (s *Service) RemoveLine(ctx context.Context, owner domain.CartOwner, lineID string) (domain.CartSnapshot, error) {
	cart, err := s.repo.GetActive(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.EmptySnapshot(), nil
		}
		return domain.CartSnapshot{}, err
	}

	if err := s.repo.DeleteLine(ctx, cart.ID, lineID); err != nil {
		return domain.CartSnapshot{}, err
	}

	return s.refresh(ctx, owner)
}

// Clear removes every line. Idempotent; clearing a missing cart succeeds.
func (s *Service) Clear(ctx context.Context, owner domain.CartOwner) (domain.CartSnapshot, error) {
	cart, err := s.repo.GetActive(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.EmptySnapshot(), nil
		}
		return domain.CartSnapshot{}, err
	}

	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return domain.CartSnapshot{}, err
	}

	snap := domain.EmptySnapshot()
	snap.CartID = cart.ID
	return snap, nil
}

func (s *Service) refresh(ctx context.Context, owner domain.CartOwner) (domain.CartSnapshot, error) {
	cart, err := s.repo.GetActive(ctx, owner)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	return s.snapshotCart(ctx, cart)
}

func (s *Service) snapshotCart(ctx context.Context, cart *domain.Cart) (domain.CartSnapshot, error) {
	snap := domain.CartSnapshot{
		CartID:   cart.ID,
		Lines:    make([]domain.SnapshotLine, 0, len(cart.Lines)),
		Subtotal: decimal.Zero,
	}
	for _, line := range cart.Lines {
		item, err := s.catalog.GetSellable(ctx, line.Item)
		if err != nil {
			return domain.CartSnapshot{}, err
		}
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		snap.Lines = append(snap.Lines, domain.SnapshotLine{
			ID:        line.ID,
			Item:      line.Item,
			Name:      item.Name,
			Quantity:  line.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: lineTotal,
		})
		snap.Subtotal = snap.Subtotal.Add(lineTotal)
		snap.ItemCount += line.Quantity
	}
	return snap, nil
}
