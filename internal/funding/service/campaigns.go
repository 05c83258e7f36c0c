package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/crowdvault/internal/asset"
	"github.com/louisbranch/crowdvault/internal/event"
	funding "github.com/louisbranch/crowdvault/internal/funding/domain"
	"github.com/louisbranch/crowdvault/internal/treasury"
)

const (
	entityCampaign = "campaign"
	entityAsset    = "asset"
)

// withPayload marshals payload into the event's PayloadJSON slot.
func withPayload(evt event.Event, payload any) (event.Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return event.Event{}, fmt.Errorf("encode %s payload: %w", evt.Type, err)
	}
	evt.PayloadJSON = raw
	return evt, nil
}

// CreateCampaign opens a new campaign with the creator's initial deposit.
// The deposit is settled through the ledger before the aggregate and its
// journal events are persisted in one transaction; if persistence fails
// the settlement is reversed.
func (s *Service) CreateCampaign(ctx context.Context, input funding.CreateCampaignInput) (funding.CreateCampaignResult, error) {
	ctx, span := s.tracer.Start(ctx, "CreateCampaign")
	defer span.End()

	result, err := funding.CreateCampaign(input, s.clock, s.newID)
	if err != nil {
		return funding.CreateCampaignResult{}, err
	}
	campaign := result.Campaign

	events := make([]event.Event, 0, 2)
	created, err := withPayload(event.Event{
		CampaignID: campaign.ID,
		Timestamp:  campaign.CreatedAt,
		Type:       event.TypeCampaignCreated,
		ActorType:  event.ActorTypeContributor,
		ActorID:    campaign.Creator,
		EntityType: entityCampaign,
		EntityID:   campaign.ID,
	}, event.CampaignCreatedPayload{
		Name:            campaign.Name,
		AssetID:         campaign.AssetID,
		Creator:         campaign.Creator,
		Target:          campaign.Target,
		MinContribution: campaign.MinContribution,
		InitialDeposit:  input.InitialDeposit,
	})
	if err != nil {
		return funding.CreateCampaignResult{}, err
	}
	events = append(events, created)

	if result.Contribution.Completed {
		completed, err := s.completedEvent(campaign)
		if err != nil {
			return funding.CreateCampaignResult{}, err
		}
		events = append(events, completed)
	}

	if err := s.ledger.Apply(ctx, result.Contribution.Plan); err != nil {
		return funding.CreateCampaignResult{}, fmt.Errorf("settle initial deposit: %w", err)
	}

	record := asset.Asset{
		ID:         campaign.AssetID,
		CampaignID: campaign.ID,
		UpdatedAt:  s.clock().UTC(),
	}
	if err := s.assets.PutAsset(ctx, record); err != nil {
		return funding.CreateCampaignResult{}, s.compensate(ctx, result.Contribution.Plan, fmt.Errorf("register asset: %w", err))
	}

	if err := s.store.PutCampaign(ctx, campaign, events...); err != nil {
		if deleteErr := s.assets.DeleteAsset(ctx, campaign.ID); deleteErr != nil {
			err = fmt.Errorf("%w (asset cleanup failed: %v)", err, deleteErr)
		}
		return funding.CreateCampaignResult{}, s.compensate(ctx, result.Contribution.Plan, fmt.Errorf("persist campaign: %w", err))
	}

	return result, nil
}

// Contribute applies a deposit to a campaign.
func (s *Service) Contribute(ctx context.Context, campaignID string, input funding.ContributeInput) (funding.ContributeResult, error) {
	ctx, span := s.tracer.Start(ctx, "Contribute")
	defer span.End()

	s.locks.Lock(campaignID)
	defer s.locks.Unlock(campaignID)

	campaign, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return funding.ContributeResult{}, err
	}

	result, err := campaign.Contribute(input, s.clock)
	if err != nil {
		return funding.ContributeResult{}, err
	}
	next := result.Campaign

	events := make([]event.Event, 0, 2)
	contributed, err := withPayload(event.Event{
		CampaignID: next.ID,
		Timestamp:  s.clock().UTC(),
		Type:       event.TypeCampaignContributed,
		ActorType:  event.ActorTypeContributor,
		ActorID:    input.Caller,
		EntityType: entityCampaign,
		EntityID:   next.ID,
	}, event.CampaignContributedPayload{
		Contributor:    input.Caller,
		Deposit:        input.Deposit,
		Fee:            result.Fee,
		Credited:       result.Credited,
		Refunded:       result.Refunded,
		Pool:           next.Pool,
		NewContributor: result.NewContributor,
	})
	if err != nil {
		return funding.ContributeResult{}, err
	}
	events = append(events, contributed)

	if result.Completed {
		completed, err := s.completedEvent(next)
		if err != nil {
			return funding.ContributeResult{}, err
		}
		events = append(events, completed)
	}

	if err := s.ledger.Apply(ctx, result.Plan); err != nil {
		return funding.ContributeResult{}, fmt.Errorf("settle deposit: %w", err)
	}

	if err := s.store.PutCampaign(ctx, next, events...); err != nil {
		return funding.ContributeResult{}, s.compensate(ctx, result.Plan, fmt.Errorf("persist campaign: %w", err))
	}

	return result, nil
}

// Withdraw returns part or all of a recorded contribution to the caller.
func (s *Service) Withdraw(ctx context.Context, campaignID string, input funding.WithdrawInput) (funding.WithdrawResult, error) {
	ctx, span := s.tracer.Start(ctx, "Withdraw")
	defer span.End()

	s.locks.Lock(campaignID)
	defer s.locks.Unlock(campaignID)

	campaign, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return funding.WithdrawResult{}, err
	}

	result, err := campaign.Withdraw(input)
	if err != nil {
		return funding.WithdrawResult{}, err
	}
	next := result.Campaign

	var remaining uint64
	if record, ok := next.ContributionOf(input.Caller); ok {
		remaining = record.Amount
	}
	withdrawn, err := withPayload(event.Event{
		CampaignID: next.ID,
		Timestamp:  s.clock().UTC(),
		Type:       event.TypeCampaignWithdrawn,
		ActorType:  event.ActorTypeContributor,
		ActorID:    input.Caller,
		EntityType: entityCampaign,
		EntityID:   next.ID,
	}, event.CampaignWithdrawnPayload{
		Contributor: input.Caller,
		Amount:      input.Amount,
		Remaining:   remaining,
		Removed:     result.Removed,
		Pool:        next.Pool,
	})
	if err != nil {
		return funding.WithdrawResult{}, err
	}

	if err := s.ledger.Apply(ctx, result.Plan); err != nil {
		return funding.WithdrawResult{}, fmt.Errorf("settle withdrawal: %w", err)
	}

	if err := s.store.PutCampaign(ctx, next, withdrawn); err != nil {
		return funding.WithdrawResult{}, s.compensate(ctx, result.Plan, fmt.Errorf("persist campaign: %w", err))
	}

	return result, nil
}

// Delete destroys an Active campaign at the creator's request, refunding
// every recorded contribution.
func (s *Service) Delete(ctx context.Context, campaignID, caller string) (funding.DeleteResult, error) {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()

	return s.deleteCampaign(ctx, campaignID, func(c funding.Campaign) (funding.DeleteResult, event.Event, error) {
		result, err := c.Delete(caller)
		if err != nil {
			return funding.DeleteResult{}, event.Event{}, err
		}
		deleted, err := s.deletedEvent(c, event.ActorTypeContributor, caller, false)
		return result, deleted, err
	})
}

// AdminDelete destroys a campaign under the operator capability. Active
// campaigns are refunded first; Completed campaigns are destroyed as-is.
func (s *Service) AdminDelete(ctx context.Context, campaignID, operator string) (funding.DeleteResult, error) {
	ctx, span := s.tracer.Start(ctx, "AdminDelete")
	defer span.End()

	return s.deleteCampaign(ctx, campaignID, func(c funding.Campaign) (funding.DeleteResult, event.Event, error) {
		result, err := c.AdminDelete()
		if err != nil {
			return funding.DeleteResult{}, event.Event{}, err
		}
		deleted, err := s.deletedEvent(c, event.ActorTypeAdmin, operator, true)
		return result, deleted, err
	})
}

func (s *Service) deleteCampaign(ctx context.Context, campaignID string, decide func(funding.Campaign) (funding.DeleteResult, event.Event, error)) (funding.DeleteResult, error) {
	s.locks.Lock(campaignID)
	defer s.locks.Unlock(campaignID)

	campaign, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return funding.DeleteResult{}, err
	}

	result, deleted, err := decide(campaign)
	if err != nil {
		return funding.DeleteResult{}, err
	}

	if err := s.ledger.Apply(ctx, result.Plan); err != nil {
		return funding.DeleteResult{}, fmt.Errorf("settle refunds: %w", err)
	}

	if err := s.store.DeleteCampaign(ctx, campaignID, deleted); err != nil {
		return funding.DeleteResult{}, s.compensate(ctx, result.Plan, fmt.Errorf("delete campaign: %w", err))
	}

	if err := s.assets.DeleteAsset(ctx, campaignID); err != nil {
		return funding.DeleteResult{}, fmt.Errorf("remove asset record: %w", err)
	}

	return result, nil
}

func (s *Service) completedEvent(c funding.Campaign) (event.Event, error) {
	return withPayload(event.Event{
		CampaignID: c.ID,
		Timestamp:  s.clock().UTC(),
		Type:       event.TypeCampaignCompleted,
		ActorType:  event.ActorTypeSystem,
		EntityType: entityCampaign,
		EntityID:   c.ID,
	}, event.CampaignCompletedPayload{
		Pool:         c.Pool,
		Contributors: c.ContributorCount(),
	})
}

func (s *Service) deletedEvent(c funding.Campaign, actorType event.ActorType, actorID string, adminAction bool) (event.Event, error) {
	var refunded uint64
	if c.Status == funding.StatusActive {
		refunded = c.Pool
	}
	return withPayload(event.Event{
		CampaignID: c.ID,
		Timestamp:  s.clock().UTC(),
		Type:       event.TypeCampaignDeleted,
		ActorType:  actorType,
		ActorID:    actorID,
		EntityType: entityCampaign,
		EntityID:   c.ID,
	}, event.CampaignDeletedPayload{
		Refunded:    refunded,
		AdminAction: adminAction,
	})
}

// compensate reverses an applied transfer plan after a persistence
// failure, so the ledger and the store never disagree about settled
// funds.
func (s *Service) compensate(ctx context.Context, plan []treasury.Transfer, cause error) error {
	if reverseErr := s.ledger.Apply(ctx, treasury.Reverse(plan)); reverseErr != nil {
		return fmt.Errorf("%w (compensating reversal failed: %v)", cause, reverseErr)
	}
	return cause
}
