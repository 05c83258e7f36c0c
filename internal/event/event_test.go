package event

import "testing"

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		eventType Type
		want      bool
	}{
		// Campaign events
		{TypeCampaignCreated, true},
		{TypeCampaignContributed, true},
		{TypeCampaignCompleted, true},
		{TypeCampaignWithdrawn, true},
		{TypeCampaignDeleted, true},
		// Proposal events
		{TypeProposalCreated, true},
		{TypeProposalVoted, true},
		{TypeProposalPassed, true},
		{TypeProposalRejected, true},
		{TypeProposalDeleted, true},
		// Asset events
		{TypeAssetPurchased, true},
		{TypeAssetListed, true},
		{TypeAssetDelisted, true},
		// Empty type
		{"", false},
		// Custom types are allowed
		{"invalid", true},
		{"campaign.invalid", true},
		{"unknown.event", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type(%q).IsValid() = %v, want %v", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestType_Domain(t *testing.T) {
	tests := []struct {
		eventType Type
		want      string
	}{
		{TypeCampaignCreated, "campaign"},
		{TypeCampaignContributed, "campaign"},
		{TypeProposalVoted, "proposal"},
		{TypeAssetListed, "asset"},
		{Type("nodot"), "nodot"},
		{Type(""), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			if got := tt.eventType.Domain(); got != tt.want {
				t.Errorf("Type(%q).Domain() = %q, want %q", tt.eventType, got, tt.want)
			}
		})
	}
}
