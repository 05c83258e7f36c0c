package event

// CampaignCreatedPayload captures the payload for campaign.created events.
type CampaignCreatedPayload struct {
	Name            string `json:"name"`
	AssetID         string `json:"asset_id"`
	Creator         string `json:"creator"`
	Target          uint64 `json:"target"`
	MinContribution uint64 `json:"min_contribution"`
	InitialDeposit  uint64 `json:"initial_deposit"`
}

// CampaignContributedPayload captures the payload for campaign.contributed events.
type CampaignContributedPayload struct {
	Contributor    string `json:"contributor"`
	Deposit        uint64 `json:"deposit"`
	Fee            uint64 `json:"fee"`
	Credited       uint64 `json:"credited"`
	Refunded       uint64 `json:"refunded,omitempty"`
	Pool           uint64 `json:"pool"`
	NewContributor bool   `json:"new_contributor,omitempty"`
}

// CampaignCompletedPayload captures the payload for campaign.completed events.
type CampaignCompletedPayload struct {
	Pool         uint64 `json:"pool"`
	Contributors int    `json:"contributors"`
}

// CampaignWithdrawnPayload captures the payload for campaign.withdrawn events.
type CampaignWithdrawnPayload struct {
	Contributor string `json:"contributor"`
	Amount      uint64 `json:"amount"`
	Remaining   uint64 `json:"remaining"`
	Removed     bool   `json:"removed,omitempty"`
	Pool        uint64 `json:"pool"`
}

// CampaignDeletedPayload captures the payload for campaign.deleted events.
type CampaignDeletedPayload struct {
	Refunded uint64 `json:"refunded"`
	// AdminAction marks operator-initiated destruction.
	AdminAction bool `json:"admin_action,omitempty"`
}

// ProposalCreatedPayload captures the payload for proposal.created events.
type ProposalCreatedPayload struct {
	ProposalID     string `json:"proposal_id"`
	Proposer       string `json:"proposer"`
	Type           string `json:"type"`
	ListPrice      uint64 `json:"list_price,omitempty"`
	ProposerWeight uint64 `json:"proposer_weight"`
}

// ProposalVotedPayload captures the payload for proposal.voted events.
type ProposalVotedPayload struct {
	ProposalID string `json:"proposal_id"`
	Voter      string `json:"voter"`
	Choice     string `json:"choice"`
	Weight     uint64 `json:"weight"`
	Approvals  uint64 `json:"approvals"`
	Rejections uint64 `json:"rejections"`
}

// ProposalPassedPayload captures the payload for proposal.passed events.
type ProposalPassedPayload struct {
	ProposalID string `json:"proposal_id"`
	Type       string `json:"type"`
	ListPrice  uint64 `json:"list_price,omitempty"`
	Approvals  uint64 `json:"approvals"`
}

// ProposalRejectedPayload captures the payload for proposal.rejected events.
type ProposalRejectedPayload struct {
	ProposalID string `json:"proposal_id"`
	Rejections uint64 `json:"rejections"`
}

// ProposalDeletedPayload captures the payload for proposal.deleted events.
type ProposalDeletedPayload struct {
	ProposalID string `json:"proposal_id"`
	Approvals  uint64 `json:"approvals"`
	Rejections uint64 `json:"rejections"`
}

// AssetPurchasedPayload captures the payload for asset.purchased events.
type AssetPurchasedPayload struct {
	AssetID string `json:"asset_id"`
}

// AssetListedPayload captures the payload for asset.listed events.
type AssetListedPayload struct {
	AssetID   string `json:"asset_id"`
	ListPrice uint64 `json:"list_price"`
}

// AssetDelistedPayload captures the payload for asset.delisted events.
type AssetDelistedPayload struct {
	AssetID string `json:"asset_id"`
}
