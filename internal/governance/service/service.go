// Package service coordinates governance operations: weighted proposals
// and votes against completed campaigns, plus the asset registry changes
// a passed proposal triggers.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/crowdvault/internal/asset"
	"github.com/louisbranch/crowdvault/internal/event"
	governance "github.com/louisbranch/crowdvault/internal/governance/domain"
	"github.com/louisbranch/crowdvault/internal/platform/id"
	"github.com/louisbranch/crowdvault/internal/platform/keyedlock"
	"github.com/louisbranch/crowdvault/internal/storage"
)

const tracerName = "crowdvault/governance"

const (
	entityProposal = "proposal"
	entityAsset    = "asset"
)

// Config carries the service dependencies.
type Config struct {
	Store  storage.Store
	Assets storage.AssetStore
	// Clock defaults to time.Now.
	Clock func() time.Time
	// IDGenerator defaults to id.NewID.
	IDGenerator func() (string, error)
}

// Service executes proposal operations, serialized per campaign so
// tallies and asset state never race.
type Service struct {
	store  storage.Store
	assets storage.AssetStore
	clock  func() time.Time
	newID  func() (string, error)
	locks  *keyedlock.Mutex
	tracer trace.Tracer
}

// New validates dependencies and builds a governance service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Assets == nil {
		return nil, fmt.Errorf("asset store is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := cfg.IDGenerator
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store:  cfg.Store,
		assets: cfg.Assets,
		clock:  clock,
		newID:  newID,
		locks:  keyedlock.New(),
		tracer: otel.Tracer(tracerName),
	}, nil
}

func withPayload(evt event.Event, payload any) (event.Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return event.Event{}, fmt.Errorf("encode %s payload: %w", evt.Type, err)
	}
	evt.PayloadJSON = raw
	return evt, nil
}

// GetProposal returns one proposal aggregate.
func (s *Service) GetProposal(ctx context.Context, proposalID string) (governance.Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "GetProposal")
	defer span.End()
	return s.store.GetProposal(ctx, proposalID)
}

// ListProposals returns one page of a campaign's proposals.
func (s *Service) ListProposals(ctx context.Context, campaignID string, pageSize int, pageToken string) (storage.ProposalPage, error) {
	ctx, span := s.tracer.Start(ctx, "ListProposals")
	defer span.End()
	return s.store.ListProposals(ctx, campaignID, pageSize, pageToken)
}

// GetActiveProposals returns a campaign's proposals still collecting
// votes.
func (s *Service) GetActiveProposals(ctx context.Context, campaignID string) ([]governance.Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "GetActiveProposals")
	defer span.End()
	return s.store.GetActiveProposals(ctx, campaignID)
}

// applyOutcome mutates the asset registry for a passed proposal and
// returns the journal event describing the change.
func (s *Service) applyOutcome(ctx context.Context, p governance.Proposal) error {
	record, err := s.assets.GetAsset(ctx, p.CampaignID)
	if err != nil {
		return fmt.Errorf("load asset record: %w", err)
	}
	switch p.Type {
	case governance.TypeList:
		record.Listed = true
		record.ListPrice = p.ListPrice
	case governance.TypeDelist:
		record.Listed = false
		record.ListPrice = 0
	}
	record.UpdatedAt = s.clock().UTC()
	if err := s.assets.PutAsset(ctx, record); err != nil {
		return fmt.Errorf("update asset record: %w", err)
	}
	return nil
}

// outcomeEvent builds the asset.listed or asset.delisted journal entry a
// passed proposal produces.
func (s *Service) outcomeEvent(p governance.Proposal, assetID string) (event.Event, error) {
	evt := event.Event{
		CampaignID: p.CampaignID,
		Timestamp:  s.clock().UTC(),
		Type:       event.TypeAssetListed,
		ActorType:  event.ActorTypeSystem,
		EntityType: entityAsset,
		EntityID:   assetID,
	}
	if p.Type == governance.TypeDelist {
		evt.Type = event.TypeAssetDelisted
		return withPayload(evt, event.AssetDelistedPayload{AssetID: assetID})
	}
	return withPayload(evt, event.AssetListedPayload{AssetID: assetID, ListPrice: p.ListPrice})
}

// assetFlags reads the registry flags proposals validate against. A
// missing record reads as neither purchased nor listed.
func (s *Service) assetFlags(ctx context.Context, campaignID string) (asset.Asset, error) {
	record, err := s.assets.GetAsset(ctx, campaignID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return asset.Asset{}, nil
		}
		return asset.Asset{}, err
	}
	return record, nil
}
