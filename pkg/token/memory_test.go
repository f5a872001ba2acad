package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndBalance(t *testing.T) {
	l := NewMemoryLedger()
	l.Mint("acct0", 100)
	l.Mint("acct0", 25)

	assert.Equal(t, uint64(125), l.BalanceOf("acct0"))
	assert.Equal(t, uint64(0), l.BalanceOf("acct1"))
}

func TestTotalSupply(t *testing.T) {
	l := NewMemoryLedger()
	l.Mint("acct0", 100)
	l.Mint("acct1", 25)
	bound := l.Bind("acct0")

	assert.Equal(t, uint64(125), bound.TotalSupply())

	// Transfers move tokens around without changing supply.
	require.NoError(t, bound.Transfer("acct1", 40))
	assert.Equal(t, uint64(125), l.TotalSupply())
}

func TestTransfer(t *testing.T) {
	l := NewMemoryLedger()
	l.Mint("engine", 50)
	bound := l.Bind("engine")

	require.NoError(t, bound.Transfer("acct0", 20))
	assert.Equal(t, uint64(30), l.BalanceOf("engine"))
	assert.Equal(t, uint64(20), l.BalanceOf("acct0"))

	err := bound.Transfer("acct0", 31)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, uint64(30), l.BalanceOf("engine"))
}

func TestTransferFrom(t *testing.T) {
	l := NewMemoryLedger()
	l.Mint("acct0", 100)
	l.Approve("acct0", "engine", 60)
	bound := l.Bind("engine")

	require.NoError(t, bound.TransferFrom("acct0", "engine", 40))
	assert.Equal(t, uint64(60), l.BalanceOf("acct0"))
	assert.Equal(t, uint64(40), l.BalanceOf("engine"))
	assert.Equal(t, uint64(20), l.Allowance("acct0", "engine"))

	err := bound.TransferFrom("acct0", "engine", 21)
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
}

func TestTransferFromInsufficientBalance(t *testing.T) {
	l := NewMemoryLedger()
	l.Mint("acct0", 10)
	l.Approve("acct0", "engine", 100)
	bound := l.Bind("engine")

	err := bound.TransferFrom("acct0", "engine", 11)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	// A failed draw must not burn allowance.
	assert.Equal(t, uint64(100), l.Allowance("acct0", "engine"))
}
