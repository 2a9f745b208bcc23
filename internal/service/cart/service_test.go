package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"joulina-backend/internal/domain"
)

// stubCartRepo models cart rows in memory with the same uniqueness rules the
// database enforces: at most one live cart per owner, one line per sellable.
type stubCartRepo struct {
	carts  map[domain.CartOwner]*domain.Cart
	nextID int
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: make(map[domain.CartOwner]*domain.Cart)}
}

func (r *stubCartRepo) id(prefix string) string {
	r.nextID++
	return fmt.Sprintf("%s-%d", prefix, r.nextID)
}

func (r *stubCartRepo) GetOrCreate(_ context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	if cart, ok := r.carts[owner]; ok {
		return cart, nil
	}
	cart := &domain.Cart{ID: r.id("cart")}
	r.carts[owner] = cart
	return cart, nil
}

func (r *stubCartRepo) GetActive(_ context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	cart, ok := r.carts[owner]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cart, nil
}

func (r *stubCartRepo) findCart(cartID string) *domain.Cart {
	for _, cart := range r.carts {
		if cart.ID == cartID {
			return cart
		}
	}
	return nil
}

func (r *stubCartRepo) SetLineQuantity(_ context.Context, cartID string, ref domain.SellableRef, quantity int) error {
	cart := r.findCart(cartID)
	if cart == nil {
		return domain.ErrNotFound
	}
	if line := cart.LineFor(ref); line != nil {
		line.Quantity = quantity
		return nil
	}
	cart.Lines = append(cart.Lines, domain.CartLine{
		ID:       r.id("line"),
		CartID:   cartID,
		Item:     ref,
		Quantity: quantity,
	})
	return nil
}

func (r *stubCartRepo) UpdateLineQuantity(_ context.Context, cartID, lineID string, quantity int) error {
	cart := r.findCart(cartID)
	if cart == nil {
		return domain.ErrNotFound
	}
	line := cart.LineByID(lineID)
	if line == nil {
		return domain.ErrNotFound
	}
	line.Quantity = quantity
	return nil
}

func (r *stubCartRepo) DeleteLine(_ context.Context, cartID, lineID string) error {
	cart := r.findCart(cartID)
	if cart == nil {
		return domain.ErrNotFound
	}
	for i := range cart.Lines {
		if cart.Lines[i].ID == lineID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *stubCartRepo) Clear(_ context.Context, cartID string) error {
	if cart := r.findCart(cartID); cart != nil {
		cart.Lines = nil
	}
	return nil
}

type stubCatalog struct {
	items map[domain.SellableRef]*domain.SellableItem
}

func (s *stubCatalog) GetSellable(_ context.Context, ref domain.SellableRef) (*domain.SellableItem, error) {
	item, ok := s.items[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

type stubGuard struct {
	catalog *stubCatalog
}

func (g *stubGuard) Reserve(ctx context.Context, ref domain.SellableRef, quantity int) (*domain.SellableItem, error) {
	item, err := g.catalog.GetSellable(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !item.Active {
		return nil, domain.ErrNotFound
	}
	if item.Stock < quantity {
		return nil, &domain.InsufficientStockError{Available: item.Stock}
	}
	return item, nil
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService(items ...*domain.SellableItem) (*Service, *stubCartRepo) {
	catalog := &stubCatalog{items: make(map[domain.SellableRef]*domain.SellableItem)}
	for _, item := range items {
		catalog.items[item.Ref] = item
	}
	repo := newStubCartRepo()
	return New(repo, &stubGuard{catalog: catalog}, catalog), repo
}

func TestSnapshot_NoCartIsEmpty(t *testing.T) {
	svc, _ := newTestService()

	snap, err := svc.Snapshot(context.Background(), domain.SessionOwner("sess"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Lines) != 0 || !snap.Subtotal.IsZero() || snap.ItemCount != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestAddItem_SubtotalReflectsLivePrices(t *testing.T) {
	ref := domain.ProductRef("p1")
	svc, _ := newTestService(&domain.SellableItem{
		Ref: ref, Name: "Lip Tint", Active: true, UnitPrice: price("20.00"), Stock: 10,
	})

	snap, err := svc.AddItem(context.Background(), domain.SessionOwner("sess"), ref, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := snap.Subtotal.String(); got != "60" {
		t.Fatalf("subtotal = %s, want 60", got)
	}
	if snap.ItemCount != 3 {
		t.Fatalf("item count = %d, want 3", snap.ItemCount)
	}
	if len(snap.Lines) != 1 || snap.Lines[0].LineTotal.String() != "60" {
		t.Fatalf("unexpected lines: %+v", snap.Lines)
	}
}

func TestAddItem_DuplicateAddGrowsExistingLine(t *testing.T) {
	ref := domain.ProductRef("p1")
	svc, _ := newTestService(&domain.SellableItem{
		Ref: ref, Active: true, UnitPrice: price("20.00"), Stock: 10,
	})
	owner := domain.UserOwner("u1")

	if _, err := svc.AddItem(context.Background(), owner, ref, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	snap, err := svc.AddItem(context.Background(), owner, ref, 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(snap.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(snap.Lines))
	}
	if snap.Lines[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", snap.Lines[0].Quantity)
	}
}

func TestAddItem_SummedQuantityRejectedNotClamped(t *testing.T) {
	ref := domain.ProductRef("p1")
	svc, _ := newTestService(&domain.SellableItem{
		Ref: ref, Active: true, UnitPrice: price("20.00"), Stock: 4,
	})
	owner := domain.UserOwner("u1")

	if _, err := svc.AddItem(context.Background(), owner, ref, 3); err != nil {
		t.Fatalf("first add: %v", err)
	}

	_, err := svc.AddItem(context.Background(), owner, ref, 2)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 4 {
		t.Fatalf("available = %d, want 4", stockErr.Available)
	}

	// The cart keeps the original quantity.
	snap, err := svc.Snapshot(context.Background(), owner)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Lines[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", snap.Lines[0].Quantity)
	}
}

func TestAddItem_QuantityBelowOne(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), domain.UserOwner("u1"), domain.ProductRef("p1"), 0)
	var ve domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdateLine_AbsentLineIsNotFound(t *testing.T) {
	ref := domain.ProductRef("p1")
	svc, _ := newTestService(&domain.SellableItem{
		Ref: ref, Active: true, UnitPrice: price("20.00"), Stock: 10,
	})
	owner := domain.UserOwner("u1")

	if _, err := svc.AddItem(context.Background(), owner, ref, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err := svc.UpdateLine(context.Background(), owner, "nope", 2)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateLine_SetsAbsoluteQuantity(t *testing.T) {
	ref := domain.ProductRef("p1")
	svc, _ := newTestService(&domain.SellableItem{
		Ref: ref, Active: true, UnitPrice: price("10.00"), Stock: 10,
	})
	owner := domain.UserOwner("u1")

	snap, err := svc.AddItem(context.Background(), owner, ref, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	snap, err = svc.UpdateLine(context.Background(), owner, snap.Lines[0].ID, 7)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if snap.Lines[0].Quantity != 7 {
		t.Fatalf("quantity = %d, want 7", snap.Lines[0].Quantity)
	}
	if got := snap.Subtotal.String(); got != "70" {
		t.Fatalf("subtotal = %s, want 70", got)
	}
}

func TestRemoveLine_AbsentLineIsIdempotent(t *testing.T) {
	ref := domain.ProductRef("p1")
	svc, _ := newTestService(&domain.SellableItem{
		Ref: ref, Active: true, UnitPrice: price("20.00"), Stock: 10,
	})
	owner := domain.UserOwner("u1")

	snap, err := svc.AddItem(context.Background(), owner, ref, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	lineID := snap.Lines[0].ID

	snap, err = svc.RemoveLine(context.Background(), owner, lineID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(snap.Lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", snap.Lines)
	}

	// Removing again succeeds with the unchanged snapshot.
	snap, err = svc.RemoveLine(context.Background(), owner, lineID)
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if len(snap.Lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", snap.Lines)
	}
}

func TestClear_Idempotent(t *testing.T) {
	ref := domain.ProductRef("p1")
	svc, _ := newTestService(&domain.SellableItem{
		Ref: ref, Active: true, UnitPrice: price("20.00"), Stock: 10,
	})
	owner := domain.SessionOwner("sess")

	if _, err := svc.AddItem(context.Background(), owner, ref, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	for i := 0; i < 2; i++ {
		snap, err := svc.Clear(context.Background(), owner)
		if err != nil {
			t.Fatalf("clear %d: %v", i, err)
		}
		if len(snap.Lines) != 0 || !snap.Subtotal.IsZero() {
			t.Fatalf("clear %d: expected empty snapshot, got %+v", i, snap)
		}
	}
}
