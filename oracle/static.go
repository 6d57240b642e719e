package oracle

import (
	"context"
	"math/big"
	"time"
)

// StaticFeed serves fixed readings from memory. Used in tests and local
// development where no live feed is reachable.
type StaticFeed struct {
	Values map[string]*big.Int
	Err    error
}

// Reading implements PriceFeed.
func (f *StaticFeed) Reading(ctx context.Context, feedID string) (Reading, error) {
	if !ValidFeedID(feedID) {
		return Reading{}, ErrInvalidFeedID
	}
	if f.Err != nil {
		return Reading{}, f.Err
	}
	value, ok := f.Values[feedID]
	if !ok {
		return Reading{}, ErrInvalidFeedID
	}
	return Reading{Value: new(big.Int).Set(value), AsOf: time.Now()}, nil
}

// StaticPool serves a fixed pool reading from memory.
type StaticPool struct {
	Value  *big.Int
	TokenA string
	TokenB string
	Err    error
}

// Liquidity implements LiquidityPool.
func (p *StaticPool) Liquidity(ctx context.Context) (*big.Int, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return new(big.Int).Set(p.Value), nil
}

// Tokens implements LiquidityPool.
func (p *StaticPool) Tokens() (string, string) {
	return p.TokenA, p.TokenB
}
