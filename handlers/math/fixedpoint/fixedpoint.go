// Package fixedpoint provides deterministic 1e18-scaled fixed-point arithmetic
// over big integers.
//
// All values are integers scaled by 1e18 (so 1.0 == 1e18). Results are bounded
// to the signed 256-bit range, matching the width of on-chain token math.
// Exp and Ln use range reduction by powers of two plus a short series, giving a
// maximum relative error below 1e-9 over the valid domain (see the package
// tests, which check against high-precision reference values).
package fixedpoint

import (
	"errors"
	"math/big"
)

// Decimals is the number of fractional decimal digits in the representation.
const Decimals = 18

// Errors returned by the arithmetic functions. Callers are expected to treat
// any of these as a validation failure and abort the enclosing operation.
var (
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")
	ErrOverflow       = errors.New("fixedpoint: result exceeds 256-bit range")
	ErrExpOverflow    = errors.New("fixedpoint: exp input out of range")
	ErrInvalidInput   = errors.New("fixedpoint: ln requires a positive input")
)

// One is the fixed-point representation of 1.0.
var One = big.NewInt(1_000_000_000_000_000_000)

var (
	two = big.NewInt(2)

	// ln2 scaled by 1e18.
	ln2     = big.NewInt(693_147_180_559_945_309)
	halfLn2 = big.NewInt(346_573_590_279_972_654)

	// Exp domain: results must stay below 2^255 / 1e18, i.e. x <= ~135.305.
	// Below minExpInput the result truncates to zero.
	maxExpInput = mustInt("135305999368893231588")
	minExpInput = mustInt("-42139678854452767551")
)

func mustInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("fixedpoint: bad constant " + s)
	}
	return v
}

// maxMagnitude bounds every result to the signed 256-bit range.
const maxBits = 255

func checkRange(v *big.Int) (*big.Int, error) {
	if v.BitLen() > maxBits {
		return nil, ErrOverflow
	}
	return v, nil
}

// MulDiv computes a*b/c with full-width intermediates, rounding toward zero.
func MulDiv(a, b, c *big.Int) (*big.Int, error) {
	if c.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	p := new(big.Int).Mul(a, b)
	return checkRange(p.Quo(p, c))
}

// Mul multiplies two fixed-point values.
func Mul(a, b *big.Int) (*big.Int, error) {
	return MulDiv(a, b, One)
}

// Div divides two fixed-point values.
func Div(a, b *big.Int) (*big.Int, error) {
	return MulDiv(a, One, b)
}

// Exp computes the natural exponential of a fixed-point value.
//
// The input is split as x = k*ln2 + r with |r| <= ln2/2, so that
// exp(x) = 2^k * exp(r), and exp(r) is evaluated with a 20-term Taylor
// series. Inputs above ~135.305 (where the result would exceed 256 bits)
// fail with ErrExpOverflow; inputs below ~-42.14 truncate to zero.
func Exp(x *big.Int) (*big.Int, error) {
	if x.Cmp(maxExpInput) > 0 {
		return nil, ErrExpOverflow
	}
	if x.Cmp(minExpInput) < 0 {
		return big.NewInt(0), nil
	}

	k := new(big.Int).Quo(x, ln2)
	r := new(big.Int).Sub(x, new(big.Int).Mul(k, ln2))
	if r.Cmp(halfLn2) > 0 {
		k.Add(k, big.NewInt(1))
		r.Sub(r, ln2)
	} else if r.Cmp(new(big.Int).Neg(halfLn2)) < 0 {
		k.Sub(k, big.NewInt(1))
		r.Add(r, ln2)
	}

	// exp(r) for |r| <= ln2/2 via Taylor series. With |r| < 0.347 the 20th
	// term is below 1e-25, far under the documented error bound.
	sum := new(big.Int).Set(One)
	term := new(big.Int).Set(One)
	for i := int64(1); i <= 20; i++ {
		term.Mul(term, r)
		term.Quo(term, One)
		term.Quo(term, big.NewInt(i))
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, term)
	}

	// Scale by 2^k.
	shift := k.Int64()
	if shift >= 0 {
		sum.Lsh(sum, uint(shift))
	} else {
		sum.Rsh(sum, uint(-shift))
	}
	return checkRange(sum)
}

// Ln computes the natural logarithm of a positive fixed-point value.
//
// The input is normalized as x = m * 2^k with m in [1, 2), then
// ln(m) = 2*atanh((m-1)/(m+1)) is evaluated by series. The argument of the
// series is at most 1/3, so terms shrink by at least 9x per step.
func Ln(x *big.Int) (*big.Int, error) {
	if x.Sign() <= 0 {
		return nil, ErrInvalidInput
	}

	m := new(big.Int).Set(x)
	k := int64(0)
	twoOne := new(big.Int).Mul(One, two)
	for m.Cmp(twoOne) >= 0 {
		m.Rsh(m, 1)
		k++
	}
	for m.Cmp(One) < 0 {
		m.Lsh(m, 1)
		k--
	}

	// z = (m-1)/(m+1), ln(m) = 2*(z + z^3/3 + z^5/5 + ...).
	num := new(big.Int).Sub(m, One)
	den := new(big.Int).Add(m, One)
	z := new(big.Int).Mul(num, One)
	z.Quo(z, den)

	z2 := new(big.Int).Mul(z, z)
	z2.Quo(z2, One)

	sum := new(big.Int).Set(z)
	term := new(big.Int).Set(z)
	for i := int64(3); i <= 37; i += 2 {
		term.Mul(term, z2)
		term.Quo(term, One)
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, new(big.Int).Quo(term, big.NewInt(i)))
	}
	sum.Mul(sum, two)

	kPart := new(big.Int).Mul(big.NewInt(k), ln2)
	return checkRange(sum.Add(sum, kPart))
}

// LogSumExp computes ln(exp(a) + exp(b)) without evaluating exp on the raw
// arguments, using the identity
//
//	logSumExp(a, b) = max(a, b) + ln(1 + exp(-|a-b|))
//
// The exp argument is always non-positive, so the intermediate exp never
// overflows regardless of how large a and b are. This is the stability
// property the LMSR cost function depends on.
func LogSumExp(a, b *big.Int) (*big.Int, error) {
	hi, lo := a, b
	if b.Cmp(a) > 0 {
		hi, lo = b, a
	}
	d := new(big.Int).Sub(lo, hi) // <= 0
	e, err := Exp(d)
	if err != nil {
		return nil, err
	}
	l, err := Ln(new(big.Int).Add(One, e))
	if err != nil {
		return nil, err
	}
	return checkRange(l.Add(l, hi))
}
