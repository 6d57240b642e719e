package models

import (
	"time"
)

// Event types emitted by the engine for off-chain indexers. Delivery is
// fire-and-forget: consumers poll the feed, the engine never waits on them.
const (
	EventMarketCreated       = "market_created"
	EventSharesPurchased     = "shares_purchased"
	EventWhaleBetUpdated     = "whale_bet_updated"
	EventMarketResolved      = "market_resolved"
	EventFeesWithdrawn       = "fees_withdrawn"
	EventEmergencyWithdrawal = "emergency_withdrawal"
)

// Event is one append-only engine event.
type Event struct {
	ID        uint64    `json:"-" gorm:"primaryKey"`
	EventID   string    `json:"eventId" gorm:"unique;not null;size:36"`
	Type      string    `json:"type" gorm:"not null;size:40;index"`
	MarketID  uint64    `json:"marketId,omitempty" gorm:"index"`
	Trader    string    `json:"trader,omitempty" gorm:"size:100"`
	Payload   string    `json:"payload,omitempty" gorm:"size:2000"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Event) TableName() string {
	return "events"
}

// FeePool is the single cross-market fee accumulator. Exactly one row exists
// (ID 1). Per-market FeeBalance records what each market contributed; this
// row is the only balance the platform can withdraw from.
type FeePool struct {
	ID        uint64    `json:"-" gorm:"primaryKey"`
	Balance   Numeric   `json:"balance"`
	Withdrawn Numeric   `json:"withdrawn"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (FeePool) TableName() string {
	return "fee_pool"
}
