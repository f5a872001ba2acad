package fixedpoint

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Fixed-point values are integers scaled by PrecisionMultiplier, so that
// 100% is represented as Precision (10^18).
const (
	PrecisionMultiplier uint64 = 1e16
	Precision           uint64 = 1e18
)

var (
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrDivisionByZero     = errors.New("division by zero")
)

// U wraps a raw uint64 into a 256-bit integer.
func U(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// PrecisionInt returns the 100% fixed-point scale as a 256-bit integer.
func PrecisionInt() *uint256.Int {
	return uint256.NewInt(Precision)
}

// AddU64 returns a+b, failing on uint64 overflow.
func AddU64(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// SubU64 returns a-b, failing on underflow.
func SubU64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrArithmeticOverflow
	}
	return a - b, nil
}

// Mul returns a*b over 256 bits, failing on overflow.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

// MulDiv returns floor(a*b/d). The product is computed over a 512-bit
// intermediate, so a*b may exceed 256 bits as long as the quotient fits.
func MulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

// Div returns floor(a/d).
func Div(a, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	return new(uint256.Int).Div(a, d), nil
}

// Min returns the smaller of a and b.
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// ToU64 narrows a 256-bit value back to uint64, failing when it does not fit.
func ToU64(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return v.Uint64(), nil
}

// DecimalString renders a fixed-point value as an exact decimal, e.g.
// 4*Precision -> "4".
func DecimalString(v *uint256.Int) string {
	return decimal.NewFromBigInt(v.ToBig(), -18).String()
}
