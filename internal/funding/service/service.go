// Package service coordinates funding operations: domain decisions,
// settlement through the treasury, persistence, and journal events.
package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/crowdvault/internal/asset"
	funding "github.com/louisbranch/crowdvault/internal/funding/domain"
	"github.com/louisbranch/crowdvault/internal/platform/id"
	"github.com/louisbranch/crowdvault/internal/platform/keyedlock"
	"github.com/louisbranch/crowdvault/internal/storage"
	"github.com/louisbranch/crowdvault/internal/treasury"
)

const tracerName = "crowdvault/funding"

// Config carries the service dependencies.
type Config struct {
	Store  storage.Store
	Assets storage.AssetStore
	Ledger treasury.Ledger
	// Clock defaults to time.Now.
	Clock func() time.Time
	// IDGenerator defaults to id.NewID.
	IDGenerator func() (string, error)
}

// Service executes campaign operations with one writer per campaign.
type Service struct {
	store  storage.Store
	assets storage.AssetStore
	ledger treasury.Ledger
	clock  func() time.Time
	newID  func() (string, error)
	locks  *keyedlock.Mutex
	tracer trace.Tracer
}

// New validates dependencies and builds a campaign service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Assets == nil {
		return nil, fmt.Errorf("asset store is required")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("ledger is required")
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
		ledger: cfg.Ledger,
		clock:  clock,
		newID:  newID,
		locks:  keyedlock.New(),
		tracer: otel.Tracer(tracerName),
	}, nil
}

// GetCampaign returns one campaign aggregate.
func (s *Service) GetCampaign(ctx context.Context, campaignID string) (funding.Campaign, error) {
	ctx, span := s.tracer.Start(ctx, "GetCampaign")
	defer span.End()
	return s.store.GetCampaign(ctx, campaignID)
}

// ListCampaigns returns one page of campaigns.
func (s *Service) ListCampaigns(ctx context.Context, pageSize int, pageToken string) (storage.CampaignPage, error) {
	ctx, span := s.tracer.Start(ctx, "ListCampaigns")
	defer span.End()
	return s.store.ListCampaigns(ctx, pageSize, pageToken)
}

// ListEventsPage returns one filtered page of a campaign's journal.
func (s *Service) ListEventsPage(ctx context.Context, req storage.ListEventsPageRequest) (storage.ListEventsPageResult, error) {
	ctx, span := s.tracer.Start(ctx, "ListEventsPage")
	defer span.End()
	return s.store.ListEventsPage(ctx, req)
}

// GetAsset returns the asset registry record for a campaign.
func (s *Service) GetAsset(ctx context.Context, campaignID string) (asset.Asset, error) {
	ctx, span := s.tracer.Start(ctx, "GetAsset")
	defer span.End()
	return s.assets.GetAsset(ctx, campaignID)
}
