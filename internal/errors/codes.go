// Package errors provides structured error handling with i18n support.
package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Campaign validation errors
	CodeCampaignTargetInvalid  Code = "CAMPAIGN_TARGET_INVALID"
	CodeCampaignMinimumInvalid Code = "CAMPAIGN_MINIMUM_CONTRIBUTION_INVALID"
	CodeCampaignNameEmpty      Code = "CAMPAIGN_NAME_EMPTY"

	// Contribution errors
	CodeContributionDepositInvalid Code = "CONTRIBUTION_DEPOSIT_INVALID"
	CodeContributionBelowMinimum   Code = "CONTRIBUTION_BELOW_MINIMUM"

	// Withdrawal errors
	CodeWithdrawalAmountInvalid         Code = "WITHDRAWAL_AMOUNT_INVALID"
	CodeWithdrawalExceedsContribution   Code = "WITHDRAWAL_EXCEEDS_CONTRIBUTION"
	CodeWithdrawalRemainderBelowMinimum Code = "WITHDRAWAL_REMAINDER_BELOW_MINIMUM"

	// Campaign state errors
	CodeCampaignInactive       Code = "CAMPAIGN_INACTIVE"
	CodeCampaignCompleted      Code = "CAMPAIGN_COMPLETED"
	CodeCampaignNotCompleted   Code = "CAMPAIGN_NOT_COMPLETED"
	CodeCampaignNotContributor Code = "CAMPAIGN_NOT_CONTRIBUTOR"

	// Asset state errors
	CodeAssetNotPurchased  Code = "ASSET_NOT_PURCHASED"
	CodeAssetAlreadyListed Code = "ASSET_ALREADY_LISTED"
	CodeAssetNotListed     Code = "ASSET_NOT_LISTED"

	// Proposal errors
	CodeProposalTypeInvalid      Code = "PROPOSAL_TYPE_INVALID"
	CodeProposalListPriceInvalid Code = "PROPOSAL_LIST_PRICE_INVALID"
	CodeProposalNotActive        Code = "PROPOSAL_NOT_ACTIVE"
	CodeProposalAlreadyVoted     Code = "PROPOSAL_ALREADY_VOTED"
	CodeProposalVoteLocked       Code = "PROPOSAL_VOTE_LOCKED"
	CodeVoteTypeInvalid          Code = "VOTE_TYPE_INVALID"

	// Authorization errors
	CodeCampaignNotCreator  Code = "CAMPAIGN_NOT_CREATOR"
	CodeProposalNotProposer Code = "PROPOSAL_NOT_PROPOSER"
	CodeCredentialMissing   Code = "CREDENTIAL_MISSING"
	CodeCredentialInvalid   Code = "CREDENTIAL_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeCampaignTargetInvalid,
		CodeCampaignMinimumInvalid,
		CodeCampaignNameEmpty,
		CodeContributionDepositInvalid,
		CodeContributionBelowMinimum,
		CodeWithdrawalAmountInvalid,
		CodeWithdrawalExceedsContribution,
		CodeWithdrawalRemainderBelowMinimum,
		CodeProposalTypeInvalid,
		CodeProposalListPriceInvalid,
		CodeVoteTypeInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeCampaignInactive,
		CodeCampaignCompleted,
		CodeCampaignNotCompleted,
		CodeCampaignNotContributor,
		CodeAssetNotPurchased,
		CodeAssetAlreadyListed,
		CodeAssetNotListed,
		CodeProposalNotActive,
		CodeProposalAlreadyVoted,
		CodeProposalVoteLocked:
		return codes.FailedPrecondition

	// PermissionDenied - caller lacks the required identity or capability
	case CodeCampaignNotCreator,
		CodeProposalNotProposer,
		CodeCredentialInvalid:
		return codes.PermissionDenied

	// Unauthenticated - no credential presented at all
	case CodeCredentialMissing:
		return codes.Unauthenticated

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes for the web surface.
func (c Code) HTTPStatus() int {
	switch c.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
