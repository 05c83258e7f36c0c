// Package domain holds the governance proposal aggregate: weighted
// tallies over a completed campaign's contributor record, with one-way
// transitions to Passed or Rejected.
package domain

import (
	"time"

	apperrors "github.com/louisbranch/crowdvault/internal/errors"
	funding "github.com/louisbranch/crowdvault/internal/funding/domain"
	"github.com/louisbranch/crowdvault/internal/platform/id"
)

const (
	// PassThreshold is the tally weight at which a proposal finalizes.
	PassThreshold = 65
	// DeleteThreshold is the tally weight at or above which a proposal can
	// no longer be withdrawn by its proposer. It is intentionally lower
	// than PassThreshold: once a proposal has gathered enough momentum to
	// plausibly matter, it sticks.
	DeleteThreshold = 50
)

// Type identifies what a proposal asks for.
type Type int

const (
	// TypeUnspecified represents an invalid proposal type.
	TypeUnspecified Type = iota
	// TypeList proposes listing the governed asset at a price.
	TypeList
	// TypeDelist proposes delisting the governed asset.
	TypeDelist
)

// String renders the type for storage and events.
func (t Type) String() string {
	switch t {
	case TypeList:
		return "list"
	case TypeDelist:
		return "delist"
	default:
		return "unspecified"
	}
}

// TypeFromString parses a stored proposal type.
func TypeFromString(value string) Type {
	switch value {
	case "list":
		return TypeList
	case "delist":
		return TypeDelist
	default:
		return TypeUnspecified
	}
}

// Status describes a proposal's lifecycle. Passed and Rejected are
// terminal.
type Status int

const (
	// StatusUnspecified represents an invalid status value.
	StatusUnspecified Status = iota
	// StatusActive accepts votes and proposer deletion.
	StatusActive
	// StatusPassed is terminal: the approval tally reached the threshold.
	StatusPassed
	// StatusRejected is terminal: the rejection tally reached the threshold.
	StatusRejected
)

// String renders the status for storage and events.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPassed:
		return "passed"
	case StatusRejected:
		return "rejected"
	default:
		return "unspecified"
	}
}

// StatusFromString parses a stored proposal status.
func StatusFromString(value string) Status {
	switch value {
	case "active":
		return StatusActive
	case "passed":
		return StatusPassed
	case "rejected":
		return StatusRejected
	default:
		return StatusUnspecified
	}
}

// VoteChoice selects which tally a vote lands in.
type VoteChoice int

const (
	// VoteUnspecified represents an invalid vote choice.
	VoteUnspecified VoteChoice = iota
	// VoteApprove adds the caller's weight to the approval tally.
	VoteApprove
	// VoteReject adds the caller's weight to the rejection tally.
	VoteReject
)

// String renders the choice for storage and events.
func (v VoteChoice) String() string {
	switch v {
	case VoteApprove:
		return "approve"
	case VoteReject:
		return "reject"
	default:
		return "unspecified"
	}
}

// VoteChoiceFromString parses a stored vote choice.
func VoteChoiceFromString(value string) VoteChoice {
	switch value {
	case "approve":
		return VoteApprove
	case "reject":
		return VoteReject
	default:
		return VoteUnspecified
	}
}

// Tally is one side's accumulated weight and voter set. An address
// appears in at most one tally's set, ever.
type Tally struct {
	Weight uint64
	Voters map[string]struct{}
}

func newTally() Tally {
	return Tally{Voters: make(map[string]struct{})}
}

func (t Tally) clone() Tally {
	out := Tally{Weight: t.Weight, Voters: make(map[string]struct{}, len(t.Voters))}
	for addr := range t.Voters {
		out.Voters[addr] = struct{}{}
	}
	return out
}

func (t Tally) has(addr string) bool {
	_, ok := t.Voters[addr]
	return ok
}

// Proposal is the governance aggregate. CampaignID is a read-only
// back-reference; the proposal never mutates the campaign.
type Proposal struct {
	ID         string
	CampaignID string
	Proposer   string
	Type       Type
	// ListPrice is the asking price for TypeList proposals, zero otherwise.
	ListPrice  uint64
	Approvals  Tally
	Rejections Tally
	Status     Status
	CreatedAt  time.Time
	// EndedAt is zero until a terminal transition.
	EndedAt time.Time
}

// HasVoted reports whether the address appears in either voter set.
func (p Proposal) HasVoted(addr string) bool {
	return p.Approvals.has(addr) || p.Rejections.has(addr)
}

func (p Proposal) clone() Proposal {
	out := p
	out.Approvals = p.Approvals.clone()
	out.Rejections = p.Rejections.clone()
	return out
}

// CreateProposalInput describes a new proposal against a completed
// campaign. AssetPurchased and AssetListed are boundary flags read from
// the asset registry at call time.
type CreateProposalInput struct {
	Campaign       funding.Campaign
	Proposer       string
	Type           Type
	ListPrice      uint64
	AssetPurchased bool
	AssetListed    bool
}

// CreateProposalResult carries the proposal and the proposer's implicit
// approval weight.
type CreateProposalResult struct {
	Proposal Proposal
	// ProposerWeight is the weight of the implicit approval vote.
	ProposerWeight uint64
	// Passed reports whether the proposal was born already Passed.
	Passed bool
}

// CreateProposal opens a proposal against a Completed campaign. The
// proposer implicitly approves with their own weight; if that alone meets
// the pass threshold the proposal is born Passed.
func CreateProposal(input CreateProposalInput, clock func() time.Time, idGenerator func() (string, error)) (CreateProposalResult, error) {
	if clock == nil {
		clock = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if input.Campaign.Status != funding.StatusCompleted {
		return CreateProposalResult{}, apperrors.New(apperrors.CodeCampaignNotCompleted, "campaign has not completed funding")
	}
	if !input.AssetPurchased {
		return CreateProposalResult{}, apperrors.New(apperrors.CodeAssetNotPurchased, "governed asset has not been purchased")
	}
	switch input.Type {
	case TypeList:
		if input.AssetListed {
			return CreateProposalResult{}, apperrors.New(apperrors.CodeAssetAlreadyListed, "governed asset is already listed")
		}
		if input.ListPrice == 0 {
			return CreateProposalResult{}, apperrors.New(apperrors.CodeProposalListPriceInvalid, "listing price is required")
		}
	case TypeDelist:
		if !input.AssetListed {
			return CreateProposalResult{}, apperrors.New(apperrors.CodeAssetNotListed, "governed asset is not listed")
		}
		input.ListPrice = 0
	default:
		return CreateProposalResult{}, apperrors.New(apperrors.CodeProposalTypeInvalid, "proposal type is required")
	}

	proposalID, err := idGenerator()
	if err != nil {
		return CreateProposalResult{}, apperrors.New(apperrors.CodeUnknown, "generate proposal id").Wrap(err)
	}

	now := clock().UTC()
	weight := Weight(input.Campaign, input.Proposer)

	proposal := Proposal{
		ID:         proposalID,
		CampaignID: input.Campaign.ID,
		Proposer:   input.Proposer,
		Type:       input.Type,
		ListPrice:  input.ListPrice,
		Approvals:  newTally(),
		Rejections: newTally(),
		Status:     StatusActive,
		CreatedAt:  now,
	}
	proposal.Approvals.Weight = weight
	proposal.Approvals.Voters[input.Proposer] = struct{}{}

	passed := weight >= PassThreshold
	if passed {
		proposal.Status = StatusPassed
		proposal.EndedAt = now
	}

	return CreateProposalResult{
		Proposal:       proposal,
		ProposerWeight: weight,
		Passed:         passed,
	}, nil
}

// VoteInput is one caller's vote, weighted by their share of the
// campaign's target at call time.
type VoteInput struct {
	Campaign funding.Campaign
	Caller   string
	Choice   VoteChoice
}

// VoteResult carries the proposal after the vote and any terminal
// transition it triggered.
type VoteResult struct {
	Proposal Proposal
	// Weight is the voting weight added to the chosen tally.
	Weight uint64
	// Outcome is the terminal status newly reached, or StatusUnspecified
	// when the proposal stays Active.
	Outcome Status
}

// Vote adds the caller's weight to exactly one tally and checks the pass
// threshold before the reject threshold. Only one tally changes per call,
// so at most one threshold can newly trigger.
func (p Proposal) Vote(input VoteInput, clock func() time.Time) (VoteResult, error) {
	if clock == nil {
		clock = time.Now
	}

	if p.Status != StatusActive {
		return VoteResult{}, apperrors.New(apperrors.CodeProposalNotActive, "proposal is not active")
	}
	if input.Choice != VoteApprove && input.Choice != VoteReject {
		return VoteResult{}, apperrors.New(apperrors.CodeVoteTypeInvalid, "vote choice is required")
	}
	if p.HasVoted(input.Caller) {
		return VoteResult{}, apperrors.New(apperrors.CodeProposalAlreadyVoted, "caller already voted on this proposal")
	}

	weight := Weight(input.Campaign, input.Caller)

	next := p.clone()
	if input.Choice == VoteApprove {
		next.Approvals.Weight += weight
		next.Approvals.Voters[input.Caller] = struct{}{}
	} else {
		next.Rejections.Weight += weight
		next.Rejections.Voters[input.Caller] = struct{}{}
	}

	outcome := StatusUnspecified
	if next.Approvals.Weight >= PassThreshold {
		outcome = StatusPassed
	} else if next.Rejections.Weight >= PassThreshold {
		outcome = StatusRejected
	}
	if outcome != StatusUnspecified {
		next.Status = outcome
		next.EndedAt = clock().UTC()
	}

	return VoteResult{Proposal: next, Weight: weight, Outcome: outcome}, nil
}

// Delete validates proposer-initiated withdrawal: Active-only,
// proposer-only, and only while both tallies sit below the delete
// threshold.
func (p Proposal) Delete(caller string) error {
	if caller != p.Proposer {
		return apperrors.New(apperrors.CodeProposalNotProposer, "only the proposer may delete the proposal")
	}
	if p.Status != StatusActive {
		return apperrors.New(apperrors.CodeProposalNotActive, "proposal is not active")
	}
	if p.Approvals.Weight >= DeleteThreshold || p.Rejections.Weight >= DeleteThreshold {
		return apperrors.New(apperrors.CodeProposalVoteLocked, "proposal has gathered too many votes to delete")
	}
	return nil
}
