package models

import (
	"math/big"
	"time"
)

// Market lifecycle states. "Expired" is not a stored state: an open market
// whose deadline has passed is expired, and stays that way until someone
// resolves it.
const (
	MarketStateOpen     = "open"
	MarketStateResolved = "resolved"
)

// Market kinds select which oracle adapter decides the outcome.
const (
	MarketKindPrice     = "price"     // price feed reading vs target
	MarketKindLiquidity = "liquidity" // pool liquidity reading vs target
)

// Market is one binary prediction market. IDs are monotonic and never
// reused; rows are never deleted. All Numeric fields are 1e18-scaled.
type Market struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	Description    string    `json:"description" gorm:"not null;size:200"`
	Kind           string    `json:"kind" gorm:"not null;default:price"`
	FeedID         string    `json:"feedId,omitempty" gorm:"size:100"`
	TargetValue    Numeric   `json:"targetValue"`
	Deadline       time.Time `json:"deadline" gorm:"not null;index"`
	Liquidity      Numeric   `json:"liquidity"` // LMSR b parameter
	CreatorAddress string    `json:"creator" gorm:"not null;size:100;index"`

	// Outstanding shares per side. Monotonically non-decreasing: shares are
	// never burned or transferred.
	QYes Numeric `json:"qYes"`
	QNo  Numeric `json:"qNo"`

	// MarketBalance holds this market's funds net of platform fees and is
	// never commingled with any other market's. FeeBalance is what this
	// market owes the platform; PaidOut tracks claimed payouts.
	MarketBalance Numeric `json:"marketBalance"`
	FeeBalance    Numeric `json:"feeBalance"`
	PaidOut       Numeric `json:"paidOut"`

	State string `json:"state" gorm:"not null;default:open;index"`

	// Resolution fields, written exactly once. Outcome and WinningShares are
	// nil until the market is resolved; read them through Resolution.
	Outcome       *bool      `json:"outcome,omitempty"`
	WinningShares *Numeric   `json:"winningShares,omitempty"`
	ResolvedAt    *time.Time `json:"resolvedAt,omitempty"`
}

func (Market) TableName() string {
	return "markets"
}

// Resolved reports whether the market has reached its terminal state.
func (m *Market) Resolved() bool {
	return m.State == MarketStateResolved
}

// Expired reports whether the market is open but past its deadline,
// i.e. awaiting resolution.
func (m *Market) Expired(now time.Time) bool {
	return m.State == MarketStateOpen && !now.Before(m.Deadline)
}

// Resolution returns the outcome and the winning-shares cache. ok is false
// for an open market, in which case neither value is meaningful.
func (m *Market) Resolution() (outcome bool, winningShares *big.Int, ok bool) {
	if !m.Resolved() || m.Outcome == nil || m.WinningShares == nil {
		return false, nil, false
	}
	return *m.Outcome, m.WinningShares.Big(), true
}
