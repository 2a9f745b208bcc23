package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartOwner identifies who a cart belongs to: an authenticated user or an
// anonymous session, never both.
type CartOwner struct {
	UserID     string
	SessionKey string
}

func UserOwner(userID string) CartOwner       { return CartOwner{UserID: userID} }
func SessionOwner(sessionKey string) CartOwner { return CartOwner{SessionKey: sessionKey} }

// Cart is the mutable pre-purchase collection of lines. A merged cart is
// terminal and never reactivated.
type Cart struct {
	ID         string     `json:"id"`
	UserID     *string    `json:"userId,omitempty"`
	SessionKey *string    `json:"-"`
	Merged     bool       `json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	Lines      []CartLine `json:"lines,omitempty"`
}

// LineFor returns the line holding the given sellable, if any.
func (c *Cart) LineFor(ref SellableRef) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].Item == ref {
			return &c.Lines[i]
		}
	}
	return nil
}

// LineByID returns the line with the given id, scoped to this cart.
func (c *Cart) LineByID(lineID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i]
		}
	}
	return nil
}

// CartLine pairs a cart with one sellable item. At most one line exists per
// (cart, sellable) pair; quantity is always positive.
type CartLine struct {
	ID        string      `json:"id"`
	CartID    string      `json:"cartId"`
	Item      SellableRef `json:"item"`
	Quantity  int         `json:"quantity"`
	CreatedAt time.Time   `json:"createdAt"`
}

// CartSnapshot is what every cart endpoint returns: lines priced live against
// the catalog, so the subtotal is never cached.
type CartSnapshot struct {
	CartID    string          `json:"cartId,omitempty"`
	Lines     []SnapshotLine  `json:"lines"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"itemCount"`
}

type SnapshotLine struct {
	ID        string          `json:"id"`
	Item      SellableRef     `json:"item"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// EmptySnapshot is returned when the owner has no cart yet; clients get zero
// totals instead of a 404.
func EmptySnapshot() CartSnapshot {
	return CartSnapshot{Lines: []SnapshotLine{}, Subtotal: decimal.Zero}
}
