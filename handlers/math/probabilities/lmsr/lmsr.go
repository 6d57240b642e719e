// Package lmsr implements the Logarithmic Market Scoring Rule (LMSR)
// originally developed by Robin Hanson for prediction markets.
//
// LMSR provides:
// - Bounded loss for the market maker (max loss = b * ln(2) for binary markets)
// - Always available liquidity
// - Price = probability interpretation
// - Well-defined cost function
//
// All quantities are 1e18-scaled fixed-point integers (see the fixedpoint
// package); there is no floating point anywhere on the pricing path, so every
// price and cost is bit-for-bit reproducible.
//
// Reference: "Logarithmic Market Scoring Rules for Modular Combinatorial
// Information Aggregation" by Robin Hanson, 2003, George Mason University
package lmsr

import (
	"errors"
	"math/big"

	"predictcore/handlers/math/fixedpoint"
)

// Side selects which outcome a trade is buying.
type Side string

const (
	Yes Side = "yes"
	No  Side = "no"
)

var (
	ErrInvalidLiquidity   = errors.New("lmsr: liquidity parameter must be positive")
	ErrInvalidShareAmount = errors.New("lmsr: share amount must be positive")
)

// one minimal fixed-point unit, used to clamp prices off the open-interval
// boundary.
var unit = big.NewInt(1)

// LMSR prices a single binary market.
type LMSR struct {
	// B is the liquidity parameter (also called the "market depth").
	// Higher B = more stable prices, less slippage, but more potential loss
	// for the market maker. Fixed-point, 1e18 scale.
	B *big.Int
}

// New creates a market maker with the given liquidity parameter.
func New(liquidity *big.Int) (*LMSR, error) {
	if liquidity == nil || liquidity.Sign() <= 0 {
		return nil, ErrInvalidLiquidity
	}
	return &LMSR{B: new(big.Int).Set(liquidity)}, nil
}

// Cost calculates the cost function C(q) = b * ln(exp(qYes/b) + exp(qNo/b)).
// The log-sum-exp identity keeps the intermediate exp arguments non-positive,
// so the function stays defined no matter how large the share quantities grow.
func (l *LMSR) Cost(qYes, qNo *big.Int) (*big.Int, error) {
	ay, err := fixedpoint.Div(qYes, l.B)
	if err != nil {
		return nil, err
	}
	an, err := fixedpoint.Div(qNo, l.B)
	if err != nil {
		return nil, err
	}
	lse, err := fixedpoint.LogSumExp(ay, an)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Mul(l.B, lse)
}

// CostToBuy calculates the cost to buy `shares` of `side`:
// Cost = C(q_new) - C(q_current). The result is strictly positive for any
// positive share amount (clamped to one fixed-point unit if rounding would
// make it vanish).
func (l *LMSR) CostToBuy(qYes, qNo *big.Int, side Side, shares *big.Int) (*big.Int, error) {
	if shares == nil || shares.Sign() <= 0 {
		return nil, ErrInvalidShareAmount
	}

	before, err := l.Cost(qYes, qNo)
	if err != nil {
		return nil, err
	}

	newYes, newNo := new(big.Int).Set(qYes), new(big.Int).Set(qNo)
	if side == Yes {
		newYes.Add(newYes, shares)
	} else {
		newNo.Add(newNo, shares)
	}
	after, err := l.Cost(newYes, newNo)
	if err != nil {
		return nil, err
	}

	cost := new(big.Int).Sub(after, before)
	if cost.Sign() <= 0 {
		cost.Set(unit)
	}
	return cost, nil
}

// PriceYes returns the instantaneous price (probability) of the YES outcome,
// fixed-point in the open interval (0, 1e18).
//
// The naive softmax exp(qYes/b) / (exp(qYes/b) + exp(qNo/b)) overflows once a
// quantity exceeds ~135*b, so the price is computed in the equivalent stable
// form 1 / (1 + exp((qNo-qYes)/b)). When even that exp overflows, the price
// has saturated and is clamped one unit inside the boundary.
func (l *LMSR) PriceYes(qYes, qNo *big.Int) (*big.Int, error) {
	diff := new(big.Int).Sub(qNo, qYes)
	arg, err := fixedpoint.Div(diff, l.B)
	if err != nil {
		return nil, err
	}

	e, err := fixedpoint.Exp(arg)
	if err == fixedpoint.ErrExpOverflow {
		// qNo dwarfs qYes: YES is as close to zero as representable.
		return new(big.Int).Set(unit), nil
	}
	if err != nil {
		return nil, err
	}

	denom := new(big.Int).Add(fixedpoint.One, e)
	p, err := fixedpoint.Div(fixedpoint.One, denom)
	if err != nil {
		return nil, err
	}
	return clampPrice(p), nil
}

// PriceNo returns the instantaneous price (probability) of the NO outcome.
func (l *LMSR) PriceNo(qYes, qNo *big.Int) (*big.Int, error) {
	py, err := l.PriceYes(qYes, qNo)
	if err != nil {
		return nil, err
	}
	return clampPrice(new(big.Int).Sub(fixedpoint.One, py)), nil
}

// MaxLoss returns the maximum possible loss for the market maker,
// b * ln(2) for a binary market.
func (l *LMSR) MaxLoss() (*big.Int, error) {
	ln2, err := fixedpoint.Ln(new(big.Int).Lsh(fixedpoint.One, 1))
	if err != nil {
		return nil, err
	}
	return fixedpoint.Mul(l.B, ln2)
}

func clampPrice(p *big.Int) *big.Int {
	ceil := new(big.Int).Sub(fixedpoint.One, unit)
	if p.Cmp(unit) < 0 {
		return new(big.Int).Set(unit)
	}
	if p.Cmp(ceil) > 0 {
		return ceil
	}
	return p
}
