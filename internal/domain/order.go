package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusPacked     OrderStatus = "packed"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusReturned   OrderStatus = "returned"
	StatusRefunded   OrderStatus = "refunded"
)

// transitions lists the allowed next statuses per status. Cancellation is
// only possible before the order enters fulfilment.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusPacked},
	StatusPacked:     {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusReturned},
	StatusReturned:   {StatusRefunded},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether the owner may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Valid reports whether the status is one of the known states.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusPacked,
		StatusShipped, StatusDelivered, StatusCancelled, StatusReturned, StatusRefunded:
		return true
	}
	return false
}

// PaymentMethod for orders. Cash on delivery is the only supported method.
type PaymentMethod string

const PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"

// Order is an immutable financial snapshot of a successful checkout. Prices
// on items are the prices at time of purchase; only the status ever changes
// after creation.
type Order struct {
	ID                string             `json:"id"`
	UserID            string             `json:"userId"`
	ShippingAddressID string             `json:"shippingAddressId"`
	Status            OrderStatus        `json:"status"`
	PaymentMethod     PaymentMethod      `json:"paymentMethod"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	ShippingFee       decimal.Decimal    `json:"shippingFee"`
	Discount          decimal.Decimal    `json:"discount"`
	TotalAmount       decimal.Decimal    `json:"totalAmount"`
	Notes             string             `json:"notes,omitempty"`
	TrackingNumber    string             `json:"trackingNumber,omitempty"`
	IsPaid            bool               `json:"isPaid"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	Items             []OrderItem        `json:"items,omitempty"`
	History           []OrderStatusEntry `json:"statusHistory,omitempty"`
}

// OrderItem carries the snapshotted unit price, never a live product price.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	Item      SellableRef     `json:"item"`
	ItemName  string          `json:"itemName"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderStatusEntry is one row of the append-only status log.
type OrderStatusEntry struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
