package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/crowdvault/internal/errors"
	"github.com/louisbranch/crowdvault/internal/event"
	funding "github.com/louisbranch/crowdvault/internal/funding/domain"
)

// MarkAssetPurchased records that the vault acquired the campaign's asset
// with the completed pool. Only Completed campaigns can purchase.
func (s *Service) MarkAssetPurchased(ctx context.Context, campaignID, operator string) error {
	ctx, span := s.tracer.Start(ctx, "MarkAssetPurchased")
	defer span.End()

	s.locks.Lock(campaignID)
	defer s.locks.Unlock(campaignID)

	campaign, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.Status != funding.StatusCompleted {
		return apperrors.New(apperrors.CodeCampaignNotCompleted, "campaign pool has not reached its target")
	}

	record, err := s.assets.GetAsset(ctx, campaignID)
	if err != nil {
		return err
	}
	if record.Purchased {
		return nil
	}
	record.Purchased = true
	record.UpdatedAt = s.clock().UTC()
	if err := s.assets.PutAsset(ctx, record); err != nil {
		return fmt.Errorf("update asset record: %w", err)
	}

	purchased, err := withPayload(event.Event{
		CampaignID: campaignID,
		Timestamp:  record.UpdatedAt,
		Type:       event.TypeAssetPurchased,
		ActorType:  event.ActorTypeAdmin,
		ActorID:    operator,
		EntityType: entityAsset,
		EntityID:   record.ID,
	}, event.AssetPurchasedPayload{AssetID: record.ID})
	if err != nil {
		return err
	}
	if _, err := s.store.AppendEvent(ctx, purchased); err != nil {
		return fmt.Errorf("journal asset purchase: %w", err)
	}
	return nil
}

// RegisterPayoutWallet sets the wallet sale proceeds are paid to.
func (s *Service) RegisterPayoutWallet(ctx context.Context, campaignID, wallet string) error {
	ctx, span := s.tracer.Start(ctx, "RegisterPayoutWallet")
	defer span.End()

	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return fmt.Errorf("payout wallet is required")
	}

	s.locks.Lock(campaignID)
	defer s.locks.Unlock(campaignID)

	record, err := s.assets.GetAsset(ctx, campaignID)
	if err != nil {
		return err
	}
	record.PayoutWallet = wallet
	record.UpdatedAt = s.clock().UTC()
	if err := s.assets.PutAsset(ctx, record); err != nil {
		return fmt.Errorf("update asset record: %w", err)
	}
	return nil
}
