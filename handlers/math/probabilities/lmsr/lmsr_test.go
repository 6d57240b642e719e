package lmsr

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"predictcore/handlers/math/fixedpoint"
)

func bi(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad test constant " + s)
	}
	return v
}

func assertWithinPPB(t *testing.T, want, got *big.Int, ppb int64) {
	t.Helper()
	tol := new(big.Int).Abs(want)
	tol.Mul(tol, big.NewInt(ppb))
	tol.Quo(tol, big.NewInt(1_000_000_000))
	tol.Add(tol, big.NewInt(2))
	diff := new(big.Int).Sub(want, got)
	assert.True(t, diff.CmpAbs(tol) <= 0, "want %s got %s (diff %s > tol %s)", want, got, diff, tol)
}

// b = 10.0 in fixed point, the liquidity used across these tests.
var b10 = bi("10000000000000000000")

var (
	zero      = big.NewInt(0)
	twoShares = bi("2000000000000000000")
	oneShare  = bi("1000000000000000000")
)

func newMaker(t *testing.T) *LMSR {
	t.Helper()
	maker, err := New(b10)
	require.NoError(t, err)
	return maker
}

func TestNewRejectsBadLiquidity(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidLiquidity)
	_, err = New(big.NewInt(0))
	assert.ErrorIs(t, err, ErrInvalidLiquidity)
	_, err = New(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrInvalidLiquidity)
}

func TestFreshMarketPricesAreHalf(t *testing.T) {
	maker := newMaker(t)
	py, err := maker.PriceYes(zero, zero)
	require.NoError(t, err)
	pn, err := maker.PriceNo(zero, zero)
	require.NoError(t, err)

	half := bi("500000000000000000")
	assert.Equal(t, 0, py.Cmp(half), "fresh market YES price must be exactly one half")
	assert.Equal(t, 0, pn.Cmp(half), "fresh market NO price must be exactly one half")
}

func TestPricesSumToOne(t *testing.T) {
	maker := newMaker(t)
	cases := [][2]*big.Int{
		{zero, zero},
		{twoShares, oneShare},
		{bi("50000000000000000000"), bi("3000000000000000000")},
		{bi("1000000000000000000000"), zero},
	}
	for _, c := range cases {
		py, err := maker.PriceYes(c[0], c[1])
		require.NoError(t, err)
		pn, err := maker.PriceNo(c[0], c[1])
		require.NoError(t, err)

		sum := new(big.Int).Add(py, pn)
		assert.Equal(t, 0, sum.Cmp(fixedpoint.One), "qYes=%s qNo=%s", c[0], c[1])

		// Both strictly inside (0, 1).
		assert.Equal(t, 1, py.Sign())
		assert.Equal(t, 1, pn.Sign())
		assert.Equal(t, -1, py.Cmp(fixedpoint.One))
		assert.Equal(t, -1, pn.Cmp(fixedpoint.One))
	}
}

func TestPriceSaturatesWithoutOverflow(t *testing.T) {
	maker := newMaker(t)

	// (qNo-qYes)/b = -1000: exp is far below representable resolution.
	qYes := bi("10000000000000000000000")
	py, err := maker.PriceYes(qYes, zero)
	require.NoError(t, err)
	pn, err := maker.PriceNo(qYes, zero)
	require.NoError(t, err)

	ceil := new(big.Int).Sub(fixedpoint.One, big.NewInt(1))
	assert.Equal(t, 0, py.Cmp(ceil), "saturated YES price clamps one unit under 1")
	assert.Equal(t, 0, pn.Cmp(big.NewInt(1)), "saturated NO price clamps at one unit")

	// Mirror image.
	py, err = maker.PriceYes(zero, qYes)
	require.NoError(t, err)
	assert.Equal(t, 0, py.Cmp(big.NewInt(1)))
}

func TestCostReference(t *testing.T) {
	maker := newMaker(t)
	cost, err := maker.Cost(zero, zero)
	require.NoError(t, err)
	// b * ln(2)
	assertWithinPPB(t, bi("6931471805599453094"), cost, 1)
}

func TestCostToBuyReference(t *testing.T) {
	maker := newMaker(t)
	cost, err := maker.CostToBuy(zero, zero, Yes, twoShares)
	require.NoError(t, err)
	assertWithinPPB(t, bi("1049916888216465302"), cost, 10)
}

func TestCostToBuyStrictlyPositiveAndIncreasing(t *testing.T) {
	maker := newMaker(t)

	first, err := maker.CostToBuy(zero, zero, Yes, twoShares)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sign())

	// The next two shares cost more: price moved against the buyer.
	second, err := maker.CostToBuy(twoShares, zero, Yes, twoShares)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Cmp(first))
	assertWithinPPB(t, bi("1148763830183607839"), second, 10)

	// And cost is increasing in the share amount itself.
	smaller, err := maker.CostToBuy(zero, zero, Yes, oneShare)
	require.NoError(t, err)
	assert.Equal(t, -1, smaller.Cmp(first))
}

func TestCostToBuyRejectsNonPositiveShares(t *testing.T) {
	maker := newMaker(t)
	_, err := maker.CostToBuy(zero, zero, Yes, big.NewInt(0))
	assert.ErrorIs(t, err, ErrInvalidShareAmount)
	_, err = maker.CostToBuy(zero, zero, No, big.NewInt(-5))
	assert.ErrorIs(t, err, ErrInvalidShareAmount)
	_, err = maker.CostToBuy(zero, zero, Yes, nil)
	assert.ErrorIs(t, err, ErrInvalidShareAmount)
}

func TestBuyingMovesPrices(t *testing.T) {
	maker := newMaker(t)

	before, err := maker.PriceYes(zero, zero)
	require.NoError(t, err)

	after, err := maker.PriceYes(twoShares, zero)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Cmp(before), "buying YES must increase priceYes")
	assertWithinPPB(t, bi("549833997312477908"), after, 10)

	afterNo, err := maker.PriceNo(twoShares, zero)
	require.NoError(t, err)
	assert.Equal(t, -1, afterNo.Cmp(before), "buying YES must decrease priceNo")
	assertWithinPPB(t, bi("450166002687522091"), afterNo, 10)
}

func TestMaxLoss(t *testing.T) {
	maker := newMaker(t)
	loss, err := maker.MaxLoss()
	require.NoError(t, err)
	assertWithinPPB(t, bi("6931471805599453094"), loss, 1)
}
