package fixedpoint

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddU64(t *testing.T) {
	sum, err := AddU64(2, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), sum)

	_, err = AddU64(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestSubU64(t *testing.T) {
	diff, err := SubU64(10, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), diff)

	_, err = SubU64(4, 10)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestMulDiv(t *testing.T) {
	// 40 * 10^18 / 10 == 4 * 10^18
	z, err := MulDiv(U(40), PrecisionInt(), U(10))
	require.NoError(t, err)
	assert.Equal(t, U(4*Precision), z)

	// Intermediate product exceeds 256 bits only when the quotient does.
	big := new(uint256.Int).SetAllOne()
	z, err = MulDiv(big, big, big)
	require.NoError(t, err)
	assert.Equal(t, big, z)

	_, err = MulDiv(U(1), U(1), U(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestMulDivFloors(t *testing.T) {
	z, err := MulDiv(U(7), U(1), U(2))
	require.NoError(t, err)
	assert.Equal(t, U(3), z)
}

func TestToU64(t *testing.T) {
	v, err := ToU64(U(42))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	wide, err := Mul(U(math.MaxUint64), U(2))
	require.NoError(t, err)
	_, err = ToU64(wide)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestMin(t *testing.T) {
	assert.Equal(t, U(1), Min(U(1), U(2)))
	assert.Equal(t, U(1), Min(U(2), U(1)))
	assert.Equal(t, U(2), Min(U(2), U(2)))
}

func TestDecimalString(t *testing.T) {
	assert.Equal(t, "4", DecimalString(U(4*Precision)))
	assert.Equal(t, "0.51", DecimalString(U(51*PrecisionMultiplier)))
}
