package event

import (
	"strings"
	"time"
)

// Type identifies the type of a journal event.
type Type string

// Campaign lifecycle events.
const (
	// TypeCampaignCreated records the creation of a campaign.
	TypeCampaignCreated Type = "campaign.created"
	// TypeCampaignContributed records a contribution entering the vault.
	TypeCampaignContributed Type = "campaign.contributed"
	// TypeCampaignCompleted records the pool reaching the target.
	TypeCampaignCompleted Type = "campaign.completed"
	// TypeCampaignWithdrawn records funds leaving the vault before completion.
	TypeCampaignWithdrawn Type = "campaign.withdrawn"
	// TypeCampaignDeleted records the destruction of a campaign.
	TypeCampaignDeleted Type = "campaign.deleted"
)

// Proposal events.
const (
	// TypeProposalCreated records the creation of a governance proposal.
	TypeProposalCreated Type = "proposal.created"
	// TypeProposalVoted records a weighted vote on a proposal.
	TypeProposalVoted Type = "proposal.voted"
	// TypeProposalPassed records a proposal crossing the pass threshold.
	TypeProposalPassed Type = "proposal.passed"
	// TypeProposalRejected records a proposal crossing the reject threshold.
	TypeProposalRejected Type = "proposal.rejected"
	// TypeProposalDeleted records a proposer withdrawing a proposal.
	TypeProposalDeleted Type = "proposal.deleted"
)

// Asset events.
const (
	// TypeAssetPurchased records the vault acquiring the campaign asset.
	TypeAssetPurchased Type = "asset.purchased"
	// TypeAssetListed records the asset going on sale.
	TypeAssetListed Type = "asset.listed"
	// TypeAssetDelisted records the asset leaving the market.
	TypeAssetDelisted Type = "asset.delisted"
)

// ActorType identifies who triggered an event.
type ActorType string

const (
	// ActorTypeSystem indicates the event was triggered by the system.
	ActorTypeSystem ActorType = "system"
	// ActorTypeContributor indicates the event was triggered by a contributor.
	ActorTypeContributor ActorType = "contributor"
	// ActorTypeAdmin indicates the event was triggered by an operator.
	ActorTypeAdmin ActorType = "admin"
)

// Event represents an immutable entry in the campaign journal.
type Event struct {
	// CampaignID is the campaign this event belongs to.
	CampaignID string
	// Seq is the event sequence number within the campaign (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Hash is the content-addressed identity (SHA-256 truncated to 128-bit).
	// Assigned by storage on append.
	Hash string
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Type identifies the kind of event.
	Type Type
	// ActorType identifies who triggered the event.
	ActorType ActorType
	// ActorID is the address of the caller, empty for system events.
	ActorID string
	// EntityType is the type of entity affected (campaign, proposal, asset).
	EntityType string
	// EntityID is the ID of the entity affected.
	EntityID string
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g., "campaign", "proposal").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}
