package domain

import (
	"testing"
	"time"

	funding "github.com/louisbranch/crowdvault/internal/funding/domain"
)

func testClock() func() time.Time {
	fixed := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return fixed }
}

func staticID(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

// completedCampaign builds a campaign funded 50/50 by alice and bob.
func completedCampaign(t *testing.T) funding.Campaign {
	t.Helper()
	created, err := funding.CreateCampaign(funding.CreateCampaignInput{
		Name:            "test",
		Creator:         "alice",
		Target:          1_000_000_000,
		MinContribution: 100_000_000,
		InitialDeposit:  505_000_000,
	}, testClock(), staticID("camp1"))
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	filled, err := created.Campaign.Contribute(funding.ContributeInput{
		Caller:  "bob",
		Deposit: 510_100_000,
	}, testClock())
	if err != nil {
		t.Fatalf("fill campaign: %v", err)
	}
	if filled.Campaign.Status != funding.StatusCompleted {
		t.Fatal("expected completed campaign")
	}
	return filled.Campaign
}

func TestWeightLaw(t *testing.T) {
	campaign := completedCampaign(t)

	if w := Weight(campaign, "alice"); w != 50 {
		t.Fatalf("expected alice weight 50, got %d", w)
	}
	if w := Weight(campaign, "bob"); w != 50 {
		t.Fatalf("expected bob weight 50, got %d", w)
	}
	if w := Weight(campaign, "mallory"); w != 0 {
		t.Fatalf("expected non-contributor weight 0, got %d", w)
	}
}

func TestWeightTruncatesAndSumsBelowHundred(t *testing.T) {
	created, err := funding.CreateCampaign(funding.CreateCampaignInput{
		Name:            "test",
		Creator:         "alice",
		Target:          1_000,
		MinContribution: 100,
		InitialDeposit:  337, // net 333
	}, testClock(), staticID("camp2"))
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	campaign := created.Campaign
	for _, caller := range []string{"bob", "carol"} {
		result, err := campaign.Contribute(funding.ContributeInput{Caller: caller, Deposit: 337}, testClock())
		if err != nil {
			t.Fatalf("%s contribute: %v", caller, err)
		}
		campaign = result.Campaign
	}
	// Pool is 999 of 1000; alice tops up the final unit.
	topped, err := campaign.Contribute(funding.ContributeInput{Caller: "alice", Deposit: 2}, testClock())
	if err != nil {
		t.Fatalf("top up: %v", err)
	}
	campaign = topped.Campaign
	if campaign.Status != funding.StatusCompleted {
		t.Fatalf("expected completed campaign, pool=%d", campaign.Pool)
	}

	var sum uint64
	for _, addr := range campaign.Contributors {
		w := Weight(campaign, addr)
		if w > 100 {
			t.Fatalf("weight %d out of range for %s", w, addr)
		}
		sum += w
	}
	if sum > 100 {
		t.Fatalf("expected weight sum <= 100, got %d", sum)
	}
	if sum == 100 {
		t.Fatal("expected truncation loss with these amounts")
	}
}
