package token

import (
	"sync"
)

// MemoryLedger is an in-process fungible-token ledger with ERC20-style
// allowances. Production deployments substitute a real ledger adapter; the
// memory ledger backs tests and the demo daemon.
type MemoryLedger struct {
	balances   map[string]uint64
	allowances map[string]map[string]uint64 // owner -> spender -> remaining
	supply     uint64
	mu         sync.RWMutex
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances:   make(map[string]uint64),
		allowances: make(map[string]map[string]uint64),
	}
}

// Mint credits freshly created tokens to an account.
func (l *MemoryLedger) Mint(account string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
	l.supply += amount
}

// TotalSupply reports the sum of all minted tokens.
func (l *MemoryLedger) TotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.supply
}

// Approve grants spender the right to draw up to amount from owner. The
// grant replaces any previous allowance.
func (l *MemoryLedger) Approve(owner, spender string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	grants, ok := l.allowances[owner]
	if !ok {
		grants = make(map[string]uint64)
		l.allowances[owner] = grants
	}
	grants[spender] = amount
}

// Allowance reports the remaining grant from owner to spender.
func (l *MemoryLedger) Allowance(owner, spender string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowances[owner][spender]
}

// BalanceOf reports an account's balance.
func (l *MemoryLedger) BalanceOf(account string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

func (l *MemoryLedger) move(from, to string, amount uint64) error {
	if l.balances[from] < amount {
		return ErrInsufficientFunds
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Bind issues the capability view for a holder account.
func (l *MemoryLedger) Bind(holder string) Ledger {
	return &boundLedger{ledger: l, holder: holder}
}

type boundLedger struct {
	ledger *MemoryLedger
	holder string
}

var _ Ledger = (*boundLedger)(nil)

func (b *boundLedger) BalanceOf(account string) uint64 {
	return b.ledger.BalanceOf(account)
}

func (b *boundLedger) TotalSupply() uint64 {
	return b.ledger.TotalSupply()
}

// Transfer moves the holder's own tokens to another account.
func (b *boundLedger) Transfer(to string, amount uint64) error {
	b.ledger.mu.Lock()
	defer b.ledger.mu.Unlock()
	return b.ledger.move(b.holder, to, amount)
}

// TransferFrom draws from owner using the holder's allowance.
func (b *boundLedger) TransferFrom(owner, to string, amount uint64) error {
	b.ledger.mu.Lock()
	defer b.ledger.mu.Unlock()
	remaining := b.ledger.allowances[owner][b.holder]
	if remaining < amount {
		return ErrInsufficientAllowance
	}
	if err := b.ledger.move(owner, to, amount); err != nil {
		return err
	}
	b.ledger.allowances[owner][b.holder] = remaining - amount
	return nil
}
