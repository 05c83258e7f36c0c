package domain

import (
	"testing"

	apperrors "github.com/louisbranch/crowdvault/internal/errors"
	funding "github.com/louisbranch/crowdvault/internal/funding/domain"
)

func listProposal(t *testing.T, campaign funding.Campaign) Proposal {
	t.Helper()
	result, err := CreateProposal(CreateProposalInput{
		Campaign:       campaign,
		Proposer:       "alice",
		Type:           TypeList,
		ListPrice:      2_000_000_000,
		AssetPurchased: true,
	}, testClock(), staticID("prop1"))
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	return result.Proposal
}

func TestCreateProposalImplicitApproval(t *testing.T) {
	campaign := completedCampaign(t)

	result, err := CreateProposal(CreateProposalInput{
		Campaign:       campaign,
		Proposer:       "alice",
		Type:           TypeList,
		ListPrice:      2_000_000_000,
		AssetPurchased: true,
	}, testClock(), staticID("prop1"))
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}

	proposal := result.Proposal
	if result.ProposerWeight != 50 {
		t.Fatalf("expected proposer weight 50, got %d", result.ProposerWeight)
	}
	if result.Passed || proposal.Status != StatusActive {
		t.Fatalf("expected active proposal below threshold, got %v", proposal.Status)
	}
	if proposal.Approvals.Weight != 50 || !proposal.HasVoted("alice") {
		t.Fatal("expected alice's implicit approval recorded")
	}
	if !proposal.EndedAt.IsZero() {
		t.Fatal("expected zero EndedAt while active")
	}
}

func TestCreateProposalBornPassed(t *testing.T) {
	// alice funds 70% of the target, so her implicit approval passes alone.
	created, err := funding.CreateCampaign(funding.CreateCampaignInput{
		Name:            "test",
		Creator:         "alice",
		Target:          1_000_000_000,
		MinContribution: 100_000_000,
		InitialDeposit:  707_000_000,
	}, testClock(), staticID("camp1"))
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	filled, err := created.Campaign.Contribute(funding.ContributeInput{Caller: "bob", Deposit: 303_000_000}, testClock())
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	result, err := CreateProposal(CreateProposalInput{
		Campaign:       filled.Campaign,
		Proposer:       "alice",
		Type:           TypeList,
		ListPrice:      1,
		AssetPurchased: true,
	}, testClock(), staticID("prop1"))
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	if !result.Passed || result.Proposal.Status != StatusPassed {
		t.Fatalf("expected born-passed proposal, got %v", result.Proposal.Status)
	}
	if result.Proposal.EndedAt.IsZero() {
		t.Fatal("expected EndedAt set on terminal status")
	}
}

func TestCreateProposalGuards(t *testing.T) {
	completed := completedCampaign(t)
	active, err := funding.CreateCampaign(funding.CreateCampaignInput{
		Name:            "still funding",
		Creator:         "alice",
		Target:          1_000_000_000,
		MinContribution: 100_000_000,
		InitialDeposit:  505_000_000,
	}, testClock(), staticID("camp9"))
	if err != nil {
		t.Fatalf("create active campaign: %v", err)
	}

	tests := []struct {
		name  string
		input CreateProposalInput
		code  apperrors.Code
	}{
		{
			name:  "campaign not completed",
			input: CreateProposalInput{Campaign: active.Campaign, Proposer: "alice", Type: TypeList, ListPrice: 1, AssetPurchased: true},
			code:  apperrors.CodeCampaignNotCompleted,
		},
		{
			name:  "asset not purchased",
			input: CreateProposalInput{Campaign: completed, Proposer: "alice", Type: TypeList, ListPrice: 1},
			code:  apperrors.CodeAssetNotPurchased,
		},
		{
			name:  "list while listed",
			input: CreateProposalInput{Campaign: completed, Proposer: "alice", Type: TypeList, ListPrice: 1, AssetPurchased: true, AssetListed: true},
			code:  apperrors.CodeAssetAlreadyListed,
		},
		{
			name:  "list without price",
			input: CreateProposalInput{Campaign: completed, Proposer: "alice", Type: TypeList, AssetPurchased: true},
			code:  apperrors.CodeProposalListPriceInvalid,
		},
		{
			name:  "delist while not listed",
			input: CreateProposalInput{Campaign: completed, Proposer: "alice", Type: TypeDelist, AssetPurchased: true},
			code:  apperrors.CodeAssetNotListed,
		},
		{
			name:  "missing type",
			input: CreateProposalInput{Campaign: completed, Proposer: "alice", AssetPurchased: true},
			code:  apperrors.CodeProposalTypeInvalid,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CreateProposal(tc.input, testClock(), staticID("prop1"))
			if !apperrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestVotePassesAtThreshold(t *testing.T) {
	campaign := completedCampaign(t)
	proposal := listProposal(t, campaign)

	result, err := proposal.Vote(VoteInput{Campaign: campaign, Caller: "bob", Choice: VoteApprove}, testClock())
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if result.Weight != 50 {
		t.Fatalf("expected vote weight 50, got %d", result.Weight)
	}
	if result.Outcome != StatusPassed || result.Proposal.Status != StatusPassed {
		t.Fatalf("expected pass at 100 >= 65, got %v", result.Proposal.Status)
	}
	if result.Proposal.Approvals.Weight != 100 {
		t.Fatalf("expected approvals weight 100, got %d", result.Proposal.Approvals.Weight)
	}
	if result.Proposal.EndedAt.IsZero() {
		t.Fatal("expected EndedAt set")
	}
}

func TestVoteRejectionPath(t *testing.T) {
	// bob holds 65% so his rejection finalizes the proposal.
	created, err := funding.CreateCampaign(funding.CreateCampaignInput{
		Name:            "test",
		Creator:         "alice",
		Target:          1_000_000_000,
		MinContribution: 100_000_000,
		InitialDeposit:  353_500_000,
	}, testClock(), staticID("camp1"))
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	filled, err := created.Campaign.Contribute(funding.ContributeInput{Caller: "bob", Deposit: 707_000_000}, testClock())
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	campaign := filled.Campaign
	if campaign.Status != funding.StatusCompleted {
		t.Fatal("expected completed campaign")
	}

	proposal := listProposal(t, campaign)
	result, err := proposal.Vote(VoteInput{Campaign: campaign, Caller: "bob", Choice: VoteReject}, testClock())
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if result.Outcome != StatusRejected || result.Proposal.Status != StatusRejected {
		t.Fatalf("expected rejection, got %v", result.Proposal.Status)
	}
	if result.Proposal.Approvals.Weight >= PassThreshold {
		t.Fatal("approvals must stay below threshold in this scenario")
	}
}

func TestVoteGuards(t *testing.T) {
	campaign := completedCampaign(t)
	proposal := listProposal(t, campaign)

	if _, err := proposal.Vote(VoteInput{Campaign: campaign, Caller: "bob"}, testClock()); !apperrors.IsCode(err, apperrors.CodeVoteTypeInvalid) {
		t.Fatalf("expected invalid vote type, got %v", err)
	}

	// The proposer's implicit approval blocks a second vote.
	if _, err := proposal.Vote(VoteInput{Campaign: campaign, Caller: "alice", Choice: VoteReject}, testClock()); !apperrors.IsCode(err, apperrors.CodeProposalAlreadyVoted) {
		t.Fatalf("expected already-voted, got %v", err)
	}

	passed, err := proposal.Vote(VoteInput{Campaign: campaign, Caller: "bob", Choice: VoteApprove}, testClock())
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := passed.Proposal.Vote(VoteInput{Campaign: campaign, Caller: "carol", Choice: VoteApprove}, testClock()); !apperrors.IsCode(err, apperrors.CodeProposalNotActive) {
		t.Fatalf("expected not-active, got %v", err)
	}
}

func TestVoteDoubleVoteAcrossTallies(t *testing.T) {
	campaign := completedCampaign(t)
	proposal := listProposal(t, campaign)

	// A zero-weight outsider may vote once, in either direction, not twice.
	first, err := proposal.Vote(VoteInput{Campaign: campaign, Caller: "mallory", Choice: VoteReject}, testClock())
	if err != nil {
		t.Fatalf("outsider vote: %v", err)
	}
	if first.Weight != 0 {
		t.Fatalf("expected zero weight, got %d", first.Weight)
	}
	if _, err := first.Proposal.Vote(VoteInput{Campaign: campaign, Caller: "mallory", Choice: VoteApprove}, testClock()); !apperrors.IsCode(err, apperrors.CodeProposalAlreadyVoted) {
		t.Fatalf("expected already-voted across tallies, got %v", err)
	}
}

func TestDeleteGuardThresholds(t *testing.T) {
	campaign := completedCampaign(t)
	proposal := listProposal(t, campaign)

	// Approvals sit at 50 (the proposer's weight): locked at the delete threshold.
	if err := proposal.Delete("alice"); !apperrors.IsCode(err, apperrors.CodeProposalVoteLocked) {
		t.Fatalf("expected vote-locked at weight 50, got %v", err)
	}

	if err := proposal.Delete("mallory"); !apperrors.IsCode(err, apperrors.CodeProposalNotProposer) {
		t.Fatalf("expected not-proposer, got %v", err)
	}
}

func TestDeleteAllowedBelowThreshold(t *testing.T) {
	// alice holds 30%, so her implicit approval stays below the delete gate.
	created, err := funding.CreateCampaign(funding.CreateCampaignInput{
		Name:            "test",
		Creator:         "alice",
		Target:          1_000_000_000,
		MinContribution: 100_000_000,
		InitialDeposit:  303_000_000,
	}, testClock(), staticID("camp1"))
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	filled, err := created.Campaign.Contribute(funding.ContributeInput{Caller: "bob", Deposit: 707_000_000}, testClock())
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	proposal := listProposal(t, filled.Campaign)
	if err := proposal.Delete("alice"); err != nil {
		t.Fatalf("expected delete allowed below threshold, got %v", err)
	}

	voted, err := proposal.Vote(VoteInput{Campaign: filled.Campaign, Caller: "bob", Choice: VoteReject}, testClock())
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if voted.Outcome != StatusRejected {
		t.Fatalf("expected rejection at weight 70, got %v", voted.Outcome)
	}
	if err := voted.Proposal.Delete("alice"); !apperrors.IsCode(err, apperrors.CodeProposalNotActive) {
		t.Fatalf("expected not-active after terminal transition, got %v", err)
	}
}
