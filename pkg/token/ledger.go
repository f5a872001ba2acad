package token

import "errors"

var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Ledger is the capability surface the engine consumes from a fungible-token
// ledger. A Ledger is bound to the holder account it was issued for: Transfer
// moves the holder's own tokens, TransferFrom spends an allowance the owner
// granted to the holder.
type Ledger interface {
	BalanceOf(account string) uint64
	TotalSupply() uint64
	Transfer(to string, amount uint64) error
	TransferFrom(owner, to string, amount uint64) error
}
