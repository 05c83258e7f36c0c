package i18n

// Error codes must match the codes defined in internal/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeCampaignTargetInvalid           = "CAMPAIGN_TARGET_INVALID"
	CodeCampaignMinimumInvalid          = "CAMPAIGN_MINIMUM_CONTRIBUTION_INVALID"
	CodeCampaignNameEmpty               = "CAMPAIGN_NAME_EMPTY"
	CodeContributionDepositInvalid      = "CONTRIBUTION_DEPOSIT_INVALID"
	CodeContributionBelowMinimum        = "CONTRIBUTION_BELOW_MINIMUM"
	CodeWithdrawalAmountInvalid         = "WITHDRAWAL_AMOUNT_INVALID"
	CodeWithdrawalExceedsContribution   = "WITHDRAWAL_EXCEEDS_CONTRIBUTION"
	CodeWithdrawalRemainderBelowMinimum = "WITHDRAWAL_REMAINDER_BELOW_MINIMUM"
	CodeCampaignInactive                = "CAMPAIGN_INACTIVE"
	CodeCampaignCompleted               = "CAMPAIGN_COMPLETED"
	CodeCampaignNotCompleted            = "CAMPAIGN_NOT_COMPLETED"
	CodeCampaignNotContributor          = "CAMPAIGN_NOT_CONTRIBUTOR"
	CodeAssetNotPurchased               = "ASSET_NOT_PURCHASED"
	CodeAssetAlreadyListed              = "ASSET_ALREADY_LISTED"
	CodeAssetNotListed                  = "ASSET_NOT_LISTED"
	CodeProposalTypeInvalid             = "PROPOSAL_TYPE_INVALID"
	CodeProposalListPriceInvalid        = "PROPOSAL_LIST_PRICE_INVALID"
	CodeProposalNotActive               = "PROPOSAL_NOT_ACTIVE"
	CodeProposalAlreadyVoted            = "PROPOSAL_ALREADY_VOTED"
	CodeProposalVoteLocked              = "PROPOSAL_VOTE_LOCKED"
	CodeVoteTypeInvalid                 = "VOTE_TYPE_INVALID"
	CodeCampaignNotCreator              = "CAMPAIGN_NOT_CREATOR"
	CodeProposalNotProposer             = "PROPOSAL_NOT_PROPOSER"
	CodeCredentialMissing               = "CREDENTIAL_MISSING"
	CodeCredentialInvalid               = "CREDENTIAL_INVALID"
	CodeNotFound                        = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Campaign validation errors
		CodeCampaignTargetInvalid:  "Funding target must be greater than zero",
		CodeCampaignMinimumInvalid: "Minimum contribution must be greater than zero and no larger than the target",
		CodeCampaignNameEmpty:      "Campaign name cannot be empty",

		// Contribution errors
		CodeContributionDepositInvalid: "Deposit amount is not valid",
		CodeContributionBelowMinimum:   "Contribution of {{.Net}} is below the campaign minimum of {{.Minimum}}",

		// Withdrawal errors
		CodeWithdrawalAmountInvalid:         "Withdrawal amount must be greater than zero",
		CodeWithdrawalExceedsContribution:   "Withdrawal of {{.Amount}} exceeds the recorded contribution of {{.Recorded}}",
		CodeWithdrawalRemainderBelowMinimum: "Withdrawal would leave {{.Remainder}}, below the campaign minimum of {{.Minimum}}",

		// Campaign state errors
		CodeCampaignInactive:       "Campaign is no longer accepting funding operations",
		CodeCampaignCompleted:      "Campaign has completed funding and cannot be deleted by its creator",
		CodeCampaignNotCompleted:   "Campaign has not completed funding",
		CodeCampaignNotContributor: "Caller has no recorded contribution in this campaign",

		// Asset state errors
		CodeAssetNotPurchased:  "The governed asset has not been purchased",
		CodeAssetAlreadyListed: "The governed asset is already listed",
		CodeAssetNotListed:     "The governed asset is not listed",

		// Proposal errors
		CodeProposalTypeInvalid:      "Proposal type is not valid",
		CodeProposalListPriceInvalid: "Listing price must be greater than zero",
		CodeProposalNotActive:        "Proposal is no longer active",
		CodeProposalAlreadyVoted:     "Caller has already voted on this proposal",
		CodeProposalVoteLocked:       "Proposal has gathered too many votes to be deleted",
		CodeVoteTypeInvalid:          "Vote type is not valid",

		// Authorization errors
		CodeCampaignNotCreator:  "Only the campaign creator may perform this operation",
		CodeProposalNotProposer: "Only the proposer may perform this operation",
		CodeCredentialMissing:   "An administrative credential is required",
		CodeCredentialInvalid:   "The presented credential is not valid",

		// Storage errors
		CodeNotFound: "The requested record was not found",
	},
}
