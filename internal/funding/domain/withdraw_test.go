package domain

import (
	"testing"

	apperrors "github.com/louisbranch/crowdvault/internal/errors"
	"github.com/louisbranch/crowdvault/internal/treasury"
)

func TestWithdrawFullRemovesRecord(t *testing.T) {
	campaign := activeCampaign(t, 1_000_000_000, 10_000_000, 101_000_000)
	contributed, err := campaign.Contribute(ContributeInput{Caller: "bob", Deposit: 202_000_000}, fixedClock())
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	campaign = contributed.Campaign

	before := campaign.ContributorCount()
	result, err := campaign.Withdraw(WithdrawInput{Caller: "bob", Amount: 200_000_000})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !result.Removed {
		t.Fatal("expected full withdrawal to remove the record")
	}
	if _, ok := result.Campaign.ContributionOf("bob"); ok {
		t.Fatal("expected bob's record gone from the map")
	}
	for _, addr := range result.Campaign.Contributors {
		if addr == "bob" {
			t.Fatal("expected bob gone from the ordered list")
		}
	}
	if result.Campaign.ContributorCount() != before-1 {
		t.Fatalf("expected contributor count to drop by exactly 1, got %d -> %d", before, result.Campaign.ContributorCount())
	}
	if result.Campaign.Pool != 100_000_000 {
		t.Fatalf("expected pool 100_000_000, got %d", result.Campaign.Pool)
	}

	want := treasury.Transfer{From: treasury.VaultAccount("camp1"), To: "bob", Amount: 200_000_000}
	if len(result.Plan) != 1 || result.Plan[0] != want {
		t.Fatalf("unexpected plan %+v", result.Plan)
	}
}

func TestWithdrawPartialBoundaries(t *testing.T) {
	campaign := activeCampaign(t, 1_000_000_000, 10_000_000, 101_000_000)

	// Leaving exactly the minimum must succeed.
	result, err := campaign.Withdraw(WithdrawInput{Caller: "alice", Amount: 90_000_000})
	if err != nil {
		t.Fatalf("withdraw to minimum: %v", err)
	}
	record, _ := result.Campaign.ContributionOf("alice")
	if record.Amount != 10_000_000 {
		t.Fatalf("expected remainder 10_000_000, got %d", record.Amount)
	}
	if result.Removed {
		t.Fatal("expected partial withdrawal to keep the record")
	}

	// Leaving one unit below the minimum must abort.
	_, err = campaign.Withdraw(WithdrawInput{Caller: "alice", Amount: 90_000_001})
	if !apperrors.IsCode(err, apperrors.CodeWithdrawalRemainderBelowMinimum) {
		t.Fatalf("expected remainder-below-minimum error, got %v", err)
	}
}

func TestWithdrawGuards(t *testing.T) {
	campaign := activeCampaign(t, 1_000_000_000, 10_000_000, 101_000_000)

	tests := []struct {
		name  string
		input WithdrawInput
		code  apperrors.Code
	}{
		{"not a contributor", WithdrawInput{Caller: "mallory", Amount: 1}, apperrors.CodeCampaignNotContributor},
		{"zero amount", WithdrawInput{Caller: "alice", Amount: 0}, apperrors.CodeWithdrawalAmountInvalid},
		{"exceeds recorded", WithdrawInput{Caller: "alice", Amount: 100_000_001}, apperrors.CodeWithdrawalExceedsContribution},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := campaign.Withdraw(tc.input)
			if !apperrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestWithdrawRejectedOnCompletedCampaign(t *testing.T) {
	campaign := activeCampaign(t, 200_000_000, 10_000_000, 101_000_000)
	filled, err := campaign.Contribute(ContributeInput{Caller: "bob", Deposit: 101_000_000}, fixedClock())
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if filled.Campaign.Status != StatusCompleted {
		t.Fatal("expected completed campaign")
	}

	_, err = filled.Campaign.Withdraw(WithdrawInput{Caller: "alice", Amount: 1})
	if !apperrors.IsCode(err, apperrors.CodeCampaignInactive) {
		t.Fatalf("expected inactive error, got %v", err)
	}
}
