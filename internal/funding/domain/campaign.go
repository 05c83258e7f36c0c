// Package domain holds the funding ledger aggregate and its pure
// operations. Every operation validates against a snapshot and returns a
// new aggregate value plus the transfer plan the settlement ledger must
// apply; nothing here touches storage or the clock directly.
package domain

import (
	"math"
	"strings"
	"time"

	apperrors "github.com/louisbranch/crowdvault/internal/errors"
	"github.com/louisbranch/crowdvault/internal/platform/id"
)

// MaxTarget caps funding targets so fee and weight arithmetic
// (amount * 100) cannot overflow uint64.
const MaxTarget = math.MaxUint64 / 100

// Status describes a campaign's funding lifecycle.
type Status int

const (
	// StatusUnspecified represents an invalid status value.
	StatusUnspecified Status = iota
	// StatusActive accepts contributions, withdrawals and deletion.
	StatusActive
	// StatusCompleted freezes funding; the transition is one-way.
	StatusCompleted
)

// String renders the status for storage and events.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	default:
		return "unspecified"
	}
}

// StatusFromString parses a stored status value.
func StatusFromString(value string) Status {
	switch value {
	case "active":
		return StatusActive
	case "completed":
		return StatusCompleted
	default:
		return StatusUnspecified
	}
}

// Contribution is one contributor's live record, net of fees and clamping.
type Contribution struct {
	Amount        uint64
	ContributedAt time.Time
}

// Campaign is the funding ledger aggregate.
//
// Invariants: Pool equals the sum of all contribution amounts; Pool never
// exceeds Target; Pool == Target exactly when Status is Completed. The
// Contributors slice preserves insertion order and mirrors the keys of
// Contributions.
type Campaign struct {
	ID              string
	AssetID         string
	Name            string
	Creator         string
	Target          uint64
	MinContribution uint64
	Pool            uint64
	Status          Status
	Contributions   map[string]Contribution
	Contributors    []string
	CreatedAt       time.Time
}

// ContributorCount returns the number of live contribution records.
func (c Campaign) ContributorCount() int {
	return len(c.Contributors)
}

// ContributionOf returns the live record for an address, if any.
func (c Campaign) ContributionOf(addr string) (Contribution, bool) {
	record, ok := c.Contributions[addr]
	return record, ok
}

// clone deep-copies the aggregate so operations never alias the snapshot's
// map and slice.
func (c Campaign) clone() Campaign {
	out := c
	out.Contributions = make(map[string]Contribution, len(c.Contributions))
	for addr, record := range c.Contributions {
		out.Contributions[addr] = record
	}
	out.Contributors = append([]string(nil), c.Contributors...)
	return out
}

// CreateCampaignInput describes a new campaign and its creator's opening
// deposit.
type CreateCampaignInput struct {
	AssetID         string
	Name            string
	Creator         string
	Target          uint64
	MinContribution uint64
	InitialDeposit  uint64
}

// CreateCampaignResult is the campaign after the creator's initial
// contribution, plus that contribution's breakdown.
type CreateCampaignResult struct {
	Campaign     Campaign
	Contribution ContributeResult
}

// CreateCampaign initializes an Active campaign and immediately runs the
// creator's initial contribution through the regular contribute path, so
// the creator is contributor #1 and subject to the same minimum rule.
func CreateCampaign(input CreateCampaignInput, clock func() time.Time, idGenerator func() (string, error)) (CreateCampaignResult, error) {
	if clock == nil {
		clock = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateCampaignResult{}, apperrors.New(apperrors.CodeCampaignNameEmpty, "campaign name is required")
	}
	if input.Target == 0 || input.Target > MaxTarget {
		return CreateCampaignResult{}, apperrors.Newf(apperrors.CodeCampaignTargetInvalid, "target %d out of range", input.Target)
	}
	if input.MinContribution == 0 || input.MinContribution > input.Target {
		return CreateCampaignResult{}, apperrors.Newf(apperrors.CodeCampaignMinimumInvalid, "minimum contribution %d out of range for target %d", input.MinContribution, input.Target)
	}

	campaignID, err := idGenerator()
	if err != nil {
		return CreateCampaignResult{}, apperrors.New(apperrors.CodeUnknown, "generate campaign id").Wrap(err)
	}

	campaign := Campaign{
		ID:              campaignID,
		AssetID:         strings.TrimSpace(input.AssetID),
		Name:            input.Name,
		Creator:         input.Creator,
		Target:          input.Target,
		MinContribution: input.MinContribution,
		Pool:            0,
		Status:          StatusActive,
		Contributions:   make(map[string]Contribution),
		CreatedAt:       clock().UTC(),
	}

	contribution, err := campaign.Contribute(ContributeInput{
		Caller:  input.Creator,
		Deposit: input.InitialDeposit,
	}, clock)
	if err != nil {
		return CreateCampaignResult{}, err
	}

	return CreateCampaignResult{
		Campaign:     contribution.Campaign,
		Contribution: contribution,
	}, nil
}
