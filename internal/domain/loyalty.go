package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tier classifies a user for point-earning multipliers. Point tiers are a
// pure function of cumulative points; celebrity is assigned manually and
// never derived.
type Tier string

const (
	TierNormal    Tier = "normal"
	TierPointz1   Tier = "pointz_tier_1"
	TierPointz2   Tier = "pointz_tier_2"
	TierPointz3   Tier = "pointz_tier_3"
	TierCelebrity Tier = "celebrity"
)

// TierForPoints maps a cumulative point total to a point tier. Thresholds are
// monotonic, so a single earned transaction can only move a user upward.
func TierForPoints(points int) Tier {
	switch {
	case points >= 10000:
		return TierPointz3
	case points >= 5000:
		return TierPointz2
	case points >= 1000:
		return TierPointz1
	default:
		return TierNormal
	}
}

// Multiplier returns the point-earning multiplier for the tier. Multipliers
// strictly increase across the threshold-ordered tiers.
func (t Tier) Multiplier() decimal.Decimal {
	switch t {
	case TierPointz1:
		return decimal.NewFromFloat(1.25)
	case TierPointz2:
		return decimal.NewFromFloat(1.5)
	case TierPointz3, TierCelebrity:
		return decimal.NewFromInt(2)
	default:
		return decimal.NewFromInt(1)
	}
}

// PointTransactionType tags ledger entries.
type PointTransactionType string

const (
	PointsEarned     PointTransactionType = "earned"
	PointsRedeemed   PointTransactionType = "redeemed"
	PointsExpired    PointTransactionType = "expired"
	PointsAdjustment PointTransactionType = "adjustment"
)

// PointTransaction is one signed entry in the loyalty ledger. Reference is
// the idempotency key; an order credits points at most once through the
// unique (reference, type) pair.
type PointTransaction struct {
	ID          string               `json:"id"`
	UserID      string               `json:"userId"`
	Points      int                  `json:"points"`
	Type        PointTransactionType `json:"transactionType"`
	Description string               `json:"description,omitempty"`
	Reference   string               `json:"reference,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// OrderReference builds the ledger reference for an order's point grant.
func OrderReference(orderID string) string {
	return fmt.Sprintf("order_%s", orderID)
}
