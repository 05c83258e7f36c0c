package domain

import (
	"strconv"

	apperrors "github.com/louisbranch/crowdvault/internal/errors"
	"github.com/louisbranch/crowdvault/internal/treasury"
)

// WithdrawInput is a contributor's request to take funds back out of an
// Active campaign.
type WithdrawInput struct {
	Caller string
	Amount uint64
}

// WithdrawResult is the aggregate after a withdrawal and the transfer plan
// returning funds to the caller.
type WithdrawResult struct {
	Campaign Campaign
	// Removed reports whether the caller's record was fully withdrawn and
	// dropped from both the map and the ordered contributor list.
	Removed bool
	Plan    []treasury.Transfer
}

// Withdraw returns part or all of a recorded contribution. A partial
// withdrawal may not leave a residual below the campaign minimum; a full
// withdrawal removes the record entirely.
func (c Campaign) Withdraw(input WithdrawInput) (WithdrawResult, error) {
	if c.Status != StatusActive {
		return WithdrawResult{}, apperrors.New(apperrors.CodeCampaignInactive, "campaign funding is frozen")
	}

	record, ok := c.Contributions[input.Caller]
	if !ok || record.Amount == 0 {
		return WithdrawResult{}, apperrors.New(apperrors.CodeCampaignNotContributor, "caller has no recorded contribution")
	}
	if input.Amount == 0 {
		return WithdrawResult{}, apperrors.New(apperrors.CodeWithdrawalAmountInvalid, "withdrawal amount is required")
	}
	if input.Amount > record.Amount {
		return WithdrawResult{}, apperrors.Newf(apperrors.CodeWithdrawalExceedsContribution, "withdrawal %d exceeds recorded %d", input.Amount, record.Amount).
			WithMetadata(map[string]string{
				"Amount":   strconv.FormatUint(input.Amount, 10),
				"Recorded": strconv.FormatUint(record.Amount, 10),
			})
	}

	next := c.clone()
	removed := input.Amount == record.Amount
	if removed {
		delete(next.Contributions, input.Caller)
		for i, addr := range next.Contributors {
			if addr == input.Caller {
				next.Contributors = append(next.Contributors[:i], next.Contributors[i+1:]...)
				break
			}
		}
	} else {
		remainder := record.Amount - input.Amount
		if remainder < c.MinContribution {
			return WithdrawResult{}, apperrors.Newf(apperrors.CodeWithdrawalRemainderBelowMinimum, "remainder %d below minimum %d", remainder, c.MinContribution).
				WithMetadata(map[string]string{
					"Remainder": strconv.FormatUint(remainder, 10),
					"Minimum":   strconv.FormatUint(c.MinContribution, 10),
				})
		}
		record.Amount = remainder
		next.Contributions[input.Caller] = record
	}
	next.Pool -= input.Amount

	return WithdrawResult{
		Campaign: next,
		Removed:  removed,
		Plan: []treasury.Transfer{
			{From: treasury.VaultAccount(c.ID), To: input.Caller, Amount: input.Amount},
		},
	}, nil
}
