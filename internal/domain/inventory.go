package domain

import "time"

// InventoryAdjustment tags inventory log entries.
type InventoryAdjustment string

const (
	StockIn         InventoryAdjustment = "stock_in"
	StockOut        InventoryAdjustment = "stock_out"
	StockAdjustment InventoryAdjustment = "adjustment"
	StockReturned   InventoryAdjustment = "returned"
)

// InventoryLog records every stock movement with the order (or other
// reference) that caused it. Append-only.
type InventoryLog struct {
	ID        string              `json:"id"`
	Item      SellableRef         `json:"item"`
	Quantity  int                 `json:"quantity"`
	Type      InventoryAdjustment `json:"adjustmentType"`
	Reference string              `json:"reference,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}
