package storage

import (
	"context"

	"github.com/louisbranch/crowdvault/internal/asset"
	apperrors "github.com/louisbranch/crowdvault/internal/errors"
	"github.com/louisbranch/crowdvault/internal/event"
	funding "github.com/louisbranch/crowdvault/internal/funding/domain"
	governance "github.com/louisbranch/crowdvault/internal/governance/domain"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// CampaignStore owns campaign aggregates, contributions included. Writes
// replace the whole aggregate so the pool, the contribution map, and the
// contributor order can never drift apart.
type CampaignStore interface {
	// PutCampaign upserts a campaign and its contributions in one
	// transaction; journal events ride in the same transaction.
	PutCampaign(ctx context.Context, c funding.Campaign, events ...event.Event) error
	// GetCampaign rehydrates a campaign aggregate by ID.
	GetCampaign(ctx context.Context, id string) (funding.Campaign, error)
	// DeleteCampaign removes a campaign and its contributions, appending
	// any events in the same transaction.
	DeleteCampaign(ctx context.Context, id string, events ...event.Event) error
	// ListCampaigns returns a page of campaigns starting after the page token.
	ListCampaigns(ctx context.Context, pageSize int, pageToken string) (CampaignPage, error)
}

// CampaignPage describes a page of campaign aggregates.
type CampaignPage struct {
	Campaigns     []funding.Campaign
	NextPageToken string
}

// ProposalStore owns proposal aggregates and their recorded votes.
type ProposalStore interface {
	// PutProposal upserts a proposal and its votes in one transaction;
	// journal events ride in the same transaction.
	PutProposal(ctx context.Context, p governance.Proposal, events ...event.Event) error
	// GetProposal rehydrates a proposal aggregate by ID.
	GetProposal(ctx context.Context, id string) (governance.Proposal, error)
	// DeleteProposal removes a proposal and its votes, appending any
	// events in the same transaction.
	DeleteProposal(ctx context.Context, id string, events ...event.Event) error
	// GetActiveProposals returns the active proposals for a campaign.
	GetActiveProposals(ctx context.Context, campaignID string) ([]governance.Proposal, error)
	// ListProposals returns a page of a campaign's proposals starting after
	// the page token.
	ListProposals(ctx context.Context, campaignID string, pageSize int, pageToken string) (ProposalPage, error)
}

// ProposalPage describes a page of proposal aggregates.
type ProposalPage struct {
	Proposals     []governance.Proposal
	NextPageToken string
}

// EventStore owns the append-only campaign journal; it is the audit trail
// for every money movement and governance decision.
type EventStore interface {
	// AppendEvent atomically appends an event and returns it with sequence
	// and hash set.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// GetEventBySeq retrieves a specific event by sequence number.
	GetEventBySeq(ctx context.Context, campaignID string, seq uint64) (event.Event, error)
	// ListEvents returns events ordered by sequence ascending.
	ListEvents(ctx context.Context, campaignID string, afterSeq uint64, limit int) ([]event.Event, error)
	// GetLatestEventSeq returns the latest event sequence number for a
	// campaign, 0 if no events exist.
	GetLatestEventSeq(ctx context.Context, campaignID string) (uint64, error)
	// ListEventsPage returns a paginated, filtered list of events.
	ListEventsPage(ctx context.Context, req ListEventsPageRequest) (ListEventsPageResult, error)
}

// ListEventsPageRequest describes filters for operator event history views.
type ListEventsPageRequest struct {
	// CampaignID scopes the query to a specific campaign (required).
	CampaignID string
	// PageSize is the maximum number of events to return (default: 50, max: 200).
	PageSize int
	// CursorSeq is the sequence number to paginate from (0 for first page).
	CursorSeq uint64
	// CursorDir is the pagination direction ("fwd" = seq > cursor, "bwd" = seq < cursor).
	CursorDir string
	// CursorReverse temporarily reverses the sort order. Used for
	// "previous page" navigation to fetch items nearest to the cursor.
	CursorReverse bool
	// Descending orders results by seq desc (newest first) when true.
	Descending bool
	// FilterClause is an optional SQL WHERE clause fragment.
	FilterClause string
	// FilterParams are the positional parameters for the filter clause.
	FilterParams []any
}

// ListEventsPageResult contains paginated event history.
type ListEventsPageResult struct {
	Events []event.Event
	// HasNextPage indicates more results exist in the forward direction.
	HasNextPage bool
	// HasPrevPage indicates more results exist in the backward direction.
	HasPrevPage bool
	// TotalCount is the total number of events matching the filter.
	TotalCount int
}

// AssetStore owns the asset registry and payout wallet bindings.
type AssetStore interface {
	// PutAsset upserts an asset registry record.
	PutAsset(ctx context.Context, a asset.Asset) error
	// GetAsset retrieves an asset record by campaign ID.
	GetAsset(ctx context.Context, campaignID string) (asset.Asset, error)
	// DeleteAsset removes an asset record.
	DeleteAsset(ctx context.Context, campaignID string) error
}

// Store is a composite interface for all persistence concerns.
type Store interface {
	CampaignStore
	ProposalStore
	EventStore
	Close() error
}
