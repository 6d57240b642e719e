package models

import (
	"time"
)

// Position is one trader's holdings in one market. Shares only ever grow;
// TotalStaked is informational and plays no part in payout math.
type Position struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	MarketID      uint64 `json:"marketId" gorm:"not null;uniqueIndex:idx_positions_market_trader"`
	TraderAddress string `json:"trader" gorm:"not null;size:100;uniqueIndex:idx_positions_market_trader"`

	YesShares   Numeric `json:"yesShares"`
	NoShares    Numeric `json:"noShares"`
	TotalStaked Numeric `json:"totalStaked"`

	// Redeemed flips when the trader claims their payout after resolution.
	Redeemed bool `json:"redeemed" gorm:"default:false"`
}

func (Position) TableName() string {
	return "positions"
}

// Participant records a trader's first trade in a market. Row IDs are
// monotonic, so ordering by ID reproduces first-trade order, and the unique
// index makes duplicate registration a constant-time check.
type Participant struct {
	ID            uint64    `json:"-" gorm:"primaryKey"`
	MarketID      uint64    `json:"marketId" gorm:"not null;uniqueIndex:idx_participants_market_trader"`
	TraderAddress string    `json:"trader" gorm:"not null;size:100;uniqueIndex:idx_participants_market_trader"`
	FirstTradeAt  time.Time `json:"firstTradeAt"`
}

func (Participant) TableName() string {
	return "participants"
}
