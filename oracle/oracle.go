// Package oracle defines the resolution data sources markets settle
// against: price feeds for price-target markets and a fixed pool reference
// for liquidity-target markets. The engine only ever consumes these
// interfaces; a failed read leaves the market open and resolvable later.
package oracle

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"
)

var (
	ErrInvalidFeedID = errors.New("oracle: invalid feed id")
	ErrUnavailable   = errors.New("oracle: reading unavailable")
)

// Reading is one observation from a price feed.
type Reading struct {
	Value *big.Int  // 1e18-scaled
	AsOf  time.Time // feed-reported observation time
}

// PriceFeed supplies readings for price-target markets, keyed by feed ID.
type PriceFeed interface {
	Reading(ctx context.Context, feedID string) (Reading, error)
}

// LiquidityPool supplies the shared pool reading for liquidity-target
// markets. The pool reference is fixed at configuration time.
type LiquidityPool interface {
	Liquidity(ctx context.Context) (*big.Int, error)
	Tokens() (tokenA, tokenB string)
}

// Adapters bundles the configured resolution sources.
type Adapters struct {
	Prices PriceFeed
	Pool   LiquidityPool
}

// ValidFeedID rejects empty and all-zero feed identifiers.
func ValidFeedID(feedID string) bool {
	if feedID == "" {
		return false
	}
	trimmed := strings.TrimPrefix(feedID, "0x")
	if trimmed == "" {
		return false
	}
	return strings.Trim(trimmed, "0") != ""
}
