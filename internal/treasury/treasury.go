// Package treasury models the settlement ledger the funding core moves
// value through. The hosting environment is expected to provide an atomic
// transfer primitive between accounts; Ledger is that seam, and the
// in-memory implementation backs tests and single-process deployments.
package treasury

import "context"

// FeeSink is the account fees are routed to. Fees are never commingled
// with campaign pools.
const FeeSink = "fees"

// VaultAccount returns the escrow account holding a campaign's pool.
func VaultAccount(campaignID string) string {
	return "vault:" + campaignID
}

// Transfer is a single value movement between two accounts.
type Transfer struct {
	From   string
	To     string
	Amount uint64
}

// Ledger is the atomic value-transfer primitive.
//
// Apply commits every transfer in the plan or none of them.
type Ledger interface {
	Apply(ctx context.Context, plan []Transfer) error
	Balance(ctx context.Context, account string) (uint64, error)
}

// Reverse returns the compensating plan for an applied plan: the same
// transfers in opposite order with from/to swapped.
func Reverse(plan []Transfer) []Transfer {
	if len(plan) == 0 {
		return nil
	}
	reversed := make([]Transfer, 0, len(plan))
	for i := len(plan) - 1; i >= 0; i-- {
		step := plan[i]
		reversed = append(reversed, Transfer{From: step.To, To: step.From, Amount: step.Amount})
	}
	return reversed
}
