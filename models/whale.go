package models

import (
	"time"
)

// WhaleBet holds the single largest per-trade payment seen on one side of a
// market. There are at most two rows per market (one per side); a row is
// replaced only when a strictly larger trade lands — equal-sized trades keep
// the incumbent.
type WhaleBet struct {
	ID         uint64    `json:"-" gorm:"primaryKey"`
	MarketID   uint64    `json:"marketId" gorm:"not null;uniqueIndex:idx_whales_market_side"`
	Side       string    `json:"side" gorm:"not null;size:3;uniqueIndex:idx_whales_market_side"`
	Address    string    `json:"address" gorm:"not null;size:100"`
	Amount     Numeric   `json:"amount"`
	RecordedAt time.Time `json:"recordedAt"`
}

func (WhaleBet) TableName() string {
	return "whale_bets"
}
