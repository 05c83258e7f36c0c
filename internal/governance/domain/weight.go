package domain

import funding "github.com/louisbranch/crowdvault/internal/funding/domain"

// Weight returns a contributor's voting weight: their recorded share of
// the funding target as a truncated integer percentage in [0, 100].
//
// Weight is only meaningful for Completed campaigns, where contribution
// records are frozen for the life of any proposal. Truncation means the
// weights of all contributors may sum to strictly less than 100; that
// imprecision is accepted, not corrected. Non-contributors weigh 0.
func Weight(campaign funding.Campaign, addr string) uint64 {
	record, ok := campaign.ContributionOf(addr)
	if !ok || campaign.Target == 0 {
		return 0
	}
	return record.Amount * 100 / campaign.Target
}
