package domain

import (
	"strconv"
	"time"

	apperrors "github.com/louisbranch/crowdvault/internal/errors"
	"github.com/louisbranch/crowdvault/internal/treasury"
)

// Fee returns the platform fee for a gross deposit.
//
// The fee is 1% of the net contribution, not of the deposit: a deposit of
// 101 units nets exactly 100 with a fee of exactly 1. All division
// truncates toward zero.
func Fee(deposit uint64) uint64 {
	return deposit - deposit*100/101
}

// ContributeInput is a gross deposit submitted by a caller.
type ContributeInput struct {
	Caller  string
	Deposit uint64
}

// ContributeResult is the aggregate after a contribution, with the money
// breakdown and the transfer plan to apply.
type ContributeResult struct {
	Campaign Campaign
	// Fee is routed to the fee sink, never commingled with the pool.
	Fee uint64
	// Net is the deposit minus fee.
	Net uint64
	// Credited is the net amount recorded, clamped to the remaining gap.
	Credited uint64
	// Refunded is the clamped surplus returned to the caller.
	Refunded uint64
	// NewContributor reports whether the caller had no prior record.
	NewContributor bool
	// Completed reports whether this contribution filled the target.
	Completed bool
	Plan      []treasury.Transfer
}

// Contribute applies a deposit to an Active campaign: fee extraction,
// minimum check for new contributors, overflow clamp against the target,
// and the one-way transition to Completed when the pool fills.
func (c Campaign) Contribute(input ContributeInput, clock func() time.Time) (ContributeResult, error) {
	if clock == nil {
		clock = time.Now
	}

	if c.Status != StatusActive {
		return ContributeResult{}, apperrors.New(apperrors.CodeCampaignInactive, "campaign is not accepting contributions")
	}
	if input.Deposit == 0 || input.Deposit > MaxTarget {
		return ContributeResult{}, apperrors.Newf(apperrors.CodeContributionDepositInvalid, "deposit %d out of range", input.Deposit)
	}

	fee := Fee(input.Deposit)
	net := input.Deposit - fee

	record, exists := c.Contributions[input.Caller]
	if !exists && net < c.MinContribution {
		return ContributeResult{}, apperrors.Newf(apperrors.CodeContributionBelowMinimum, "net contribution %d below minimum %d", net, c.MinContribution).
			WithMetadata(map[string]string{
				"Net":     strconv.FormatUint(net, 10),
				"Minimum": strconv.FormatUint(c.MinContribution, 10),
			})
	}

	gap := c.Target - c.Pool
	credited := net
	var refunded uint64
	if net > gap {
		credited = gap
		refunded = net - gap
	}

	next := c.clone()
	next.Pool += credited
	record.Amount += credited
	record.ContributedAt = clock().UTC()
	next.Contributions[input.Caller] = record
	if !exists {
		next.Contributors = append(next.Contributors, input.Caller)
	}

	completed := next.Pool == next.Target
	if completed {
		next.Status = StatusCompleted
	}

	vault := treasury.VaultAccount(c.ID)
	plan := []treasury.Transfer{
		{From: input.Caller, To: vault, Amount: input.Deposit},
		{From: vault, To: treasury.FeeSink, Amount: fee},
	}
	if refunded > 0 {
		plan = append(plan, treasury.Transfer{From: vault, To: input.Caller, Amount: refunded})
	}

	return ContributeResult{
		Campaign:       next,
		Fee:            fee,
		Net:            net,
		Credited:       credited,
		Refunded:       refunded,
		NewContributor: !exists,
		Completed:      completed,
		Plan:           plan,
	}, nil
}
