package treasury

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger is a mutex-guarded in-memory settlement ledger.
//
// Plans are validated in full before any balance moves, so Apply is
// all-or-nothing. Accounts are created on first credit.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]uint64
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]uint64)}
}

// Mint credits an account out of thin air. Tests and deployment seeding
// use it to fund caller accounts before deposits.
func (l *MemoryLedger) Mint(account string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

// Apply commits the full plan or none of it.
func (l *MemoryLedger) Apply(ctx context.Context, plan []Transfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Dry-run against a scratch view so partial plans never commit.
	scratch := make(map[string]uint64, len(plan)*2)
	view := func(account string) uint64 {
		if v, ok := scratch[account]; ok {
			return v
		}
		return l.balances[account]
	}
	for _, step := range plan {
		if step.From == "" || step.To == "" {
			return fmt.Errorf("transfer accounts are required")
		}
		if step.Amount == 0 {
			continue
		}
		from := view(step.From)
		if from < step.Amount {
			return fmt.Errorf("insufficient funds in %s: have %d, need %d", step.From, from, step.Amount)
		}
		scratch[step.From] = from - step.Amount
		scratch[step.To] = view(step.To) + step.Amount
	}

	for account, balance := range scratch {
		l.balances[account] = balance
	}
	return nil
}

// Balance reports an account's balance. Unknown accounts hold zero.
func (l *MemoryLedger) Balance(ctx context.Context, account string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account], nil
}
