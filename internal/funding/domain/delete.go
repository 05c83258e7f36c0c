package domain

import (
	apperrors "github.com/louisbranch/crowdvault/internal/errors"
	"github.com/louisbranch/crowdvault/internal/treasury"
)

// DeleteResult carries the refund plan for a destroyed campaign.
type DeleteResult struct {
	// Refunded reports whether the refund loop ran.
	Refunded bool
	Plan     []treasury.Transfer
}

// Delete validates creator-initiated deletion: Active-only, creator-only,
// full refund of every recorded contribution in contributor order.
func (c Campaign) Delete(caller string) (DeleteResult, error) {
	if caller != c.Creator {
		return DeleteResult{}, apperrors.New(apperrors.CodeCampaignNotCreator, "only the creator may delete the campaign")
	}
	if c.Status != StatusActive {
		return DeleteResult{}, apperrors.New(apperrors.CodeCampaignCompleted, "completed campaigns cannot be deleted by their creator")
	}
	return DeleteResult{Refunded: true, Plan: c.refundPlan()}, nil
}

// AdminDelete validates capability-gated deletion. The refund loop runs
// only while the campaign is still Active; a Completed campaign is
// destroyed without refunding, since its pool is already committed to the
// asset purchase.
func (c Campaign) AdminDelete() (DeleteResult, error) {
	if c.Status != StatusActive {
		return DeleteResult{}, nil
	}
	return DeleteResult{Refunded: true, Plan: c.refundPlan()}, nil
}

// refundPlan drains the pool back to contributors in insertion order.
func (c Campaign) refundPlan() []treasury.Transfer {
	vault := treasury.VaultAccount(c.ID)
	plan := make([]treasury.Transfer, 0, len(c.Contributors))
	for _, addr := range c.Contributors {
		record := c.Contributions[addr]
		if record.Amount == 0 {
			continue
		}
		plan = append(plan, treasury.Transfer{From: vault, To: addr, Amount: record.Amount})
	}
	return plan
}
