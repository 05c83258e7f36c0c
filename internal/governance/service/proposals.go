package service

import (
	"context"

	"github.com/louisbranch/crowdvault/internal/event"
	governance "github.com/louisbranch/crowdvault/internal/governance/domain"
)

// CreateProposalInput describes a new proposal against a campaign.
type CreateProposalInput struct {
	CampaignID string
	Proposer   string
	Type       governance.Type
	// ListPrice is the asking price for list proposals.
	ListPrice uint64
}

// CreateProposal opens a proposal. The proposer's weight counts as an
// implicit approval; a proposal born over the pass threshold executes its
// outcome immediately.
func (s *Service) CreateProposal(ctx context.Context, input CreateProposalInput) (governance.CreateProposalResult, error) {
	ctx, span := s.tracer.Start(ctx, "CreateProposal")
	defer span.End()

	s.locks.Lock(input.CampaignID)
	defer s.locks.Unlock(input.CampaignID)

	campaign, err := s.store.GetCampaign(ctx, input.CampaignID)
	if err != nil {
		return governance.CreateProposalResult{}, err
	}
	record, err := s.assetFlags(ctx, input.CampaignID)
	if err != nil {
		return governance.CreateProposalResult{}, err
	}

	result, err := governance.CreateProposal(governance.CreateProposalInput{
		Campaign:       campaign,
		Proposer:       input.Proposer,
		Type:           input.Type,
		ListPrice:      input.ListPrice,
		AssetPurchased: record.Purchased,
		AssetListed:    record.Listed,
	}, s.clock, s.newID)
	if err != nil {
		return governance.CreateProposalResult{}, err
	}
	proposal := result.Proposal

	events := make([]event.Event, 0, 3)
	created, err := withPayload(event.Event{
		CampaignID: proposal.CampaignID,
		Timestamp:  proposal.CreatedAt,
		Type:       event.TypeProposalCreated,
		ActorType:  event.ActorTypeContributor,
		ActorID:    proposal.Proposer,
		EntityType: entityProposal,
		EntityID:   proposal.ID,
	}, event.ProposalCreatedPayload{
		ProposalID:     proposal.ID,
		Proposer:       proposal.Proposer,
		Type:           proposal.Type.String(),
		ListPrice:      proposal.ListPrice,
		ProposerWeight: result.ProposerWeight,
	})
	if err != nil {
		return governance.CreateProposalResult{}, err
	}
	events = append(events, created)

	if result.Passed {
		terminal, err := s.terminalEvents(proposal, record.ID)
		if err != nil {
			return governance.CreateProposalResult{}, err
		}
		events = append(events, terminal...)
	}

	if err := s.store.PutProposal(ctx, proposal, events...); err != nil {
		return governance.CreateProposalResult{}, err
	}
	if result.Passed {
		if err := s.applyOutcome(ctx, proposal); err != nil {
			return governance.CreateProposalResult{}, err
		}
	}

	return result, nil
}

// Vote records a weighted vote and, on a terminal transition, executes
// the proposal's outcome.
func (s *Service) Vote(ctx context.Context, proposalID, caller string, choice governance.VoteChoice) (governance.VoteResult, error) {
	ctx, span := s.tracer.Start(ctx, "Vote")
	defer span.End()

	// The campaign key is only known after a first read; the aggregate is
	// re-read under the lock so concurrent votes serialize.
	peek, err := s.store.GetProposal(ctx, proposalID)
	if err != nil {
		return governance.VoteResult{}, err
	}

	s.locks.Lock(peek.CampaignID)
	defer s.locks.Unlock(peek.CampaignID)

	proposal, err := s.store.GetProposal(ctx, proposalID)
	if err != nil {
		return governance.VoteResult{}, err
	}
	campaign, err := s.store.GetCampaign(ctx, proposal.CampaignID)
	if err != nil {
		return governance.VoteResult{}, err
	}

	result, err := proposal.Vote(governance.VoteInput{
		Campaign: campaign,
		Caller:   caller,
		Choice:   choice,
	}, s.clock)
	if err != nil {
		return governance.VoteResult{}, err
	}
	next := result.Proposal

	events := make([]event.Event, 0, 3)
	voted, err := withPayload(event.Event{
		CampaignID: next.CampaignID,
		Timestamp:  s.clock().UTC(),
		Type:       event.TypeProposalVoted,
		ActorType:  event.ActorTypeContributor,
		ActorID:    caller,
		EntityType: entityProposal,
		EntityID:   next.ID,
	}, event.ProposalVotedPayload{
		ProposalID: next.ID,
		Voter:      caller,
		Choice:     choice.String(),
		Weight:     result.Weight,
		Approvals:  next.Approvals.Weight,
		Rejections: next.Rejections.Weight,
	})
	if err != nil {
		return governance.VoteResult{}, err
	}
	events = append(events, voted)

	switch result.Outcome {
	case governance.StatusPassed:
		record, err := s.assetFlags(ctx, next.CampaignID)
		if err != nil {
			return governance.VoteResult{}, err
		}
		terminal, err := s.terminalEvents(next, record.ID)
		if err != nil {
			return governance.VoteResult{}, err
		}
		events = append(events, terminal...)
	case governance.StatusRejected:
		rejected, err := withPayload(event.Event{
			CampaignID: next.CampaignID,
			Timestamp:  s.clock().UTC(),
			Type:       event.TypeProposalRejected,
			ActorType:  event.ActorTypeSystem,
			EntityType: entityProposal,
			EntityID:   next.ID,
		}, event.ProposalRejectedPayload{
			ProposalID: next.ID,
			Rejections: next.Rejections.Weight,
		})
		if err != nil {
			return governance.VoteResult{}, err
		}
		events = append(events, rejected)
	}

	if err := s.store.PutProposal(ctx, next, events...); err != nil {
		return governance.VoteResult{}, err
	}
	if result.Outcome == governance.StatusPassed {
		if err := s.applyOutcome(ctx, next); err != nil {
			return governance.VoteResult{}, err
		}
	}

	return result, nil
}

// DeleteProposal withdraws a proposal at the proposer's request, subject
// to the tally lock threshold.
func (s *Service) DeleteProposal(ctx context.Context, proposalID, caller string) error {
	ctx, span := s.tracer.Start(ctx, "DeleteProposal")
	defer span.End()

	peek, err := s.store.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}

	s.locks.Lock(peek.CampaignID)
	defer s.locks.Unlock(peek.CampaignID)

	proposal, err := s.store.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if err := proposal.Delete(caller); err != nil {
		return err
	}

	deleted, err := withPayload(event.Event{
		CampaignID: proposal.CampaignID,
		Timestamp:  s.clock().UTC(),
		Type:       event.TypeProposalDeleted,
		ActorType:  event.ActorTypeContributor,
		ActorID:    caller,
		EntityType: entityProposal,
		EntityID:   proposal.ID,
	}, event.ProposalDeletedPayload{
		ProposalID: proposal.ID,
		Approvals:  proposal.Approvals.Weight,
		Rejections: proposal.Rejections.Weight,
	})
	if err != nil {
		return err
	}

	return s.store.DeleteProposal(ctx, proposalID, deleted)
}

// terminalEvents builds the proposal.passed entry plus the asset change
// it triggers.
func (s *Service) terminalEvents(p governance.Proposal, assetID string) ([]event.Event, error) {
	passed, err := withPayload(event.Event{
		CampaignID: p.CampaignID,
		Timestamp:  s.clock().UTC(),
		Type:       event.TypeProposalPassed,
		ActorType:  event.ActorTypeSystem,
		EntityType: entityProposal,
		EntityID:   p.ID,
	}, event.ProposalPassedPayload{
		ProposalID: p.ID,
		Type:       p.Type.String(),
		ListPrice:  p.ListPrice,
		Approvals:  p.Approvals.Weight,
	})
	if err != nil {
		return nil, err
	}
	outcome, err := s.outcomeEvent(p, assetID)
	if err != nil {
		return nil, err
	}
	return []event.Event{passed, outcome}, nil
}
