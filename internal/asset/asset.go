// Package asset tracks the off-ledger asset each campaign funds: whether
// the vault holds it, whether it is listed for sale, and where sale
// proceeds should be paid out.
package asset

import "time"

// Asset is the registry record for one campaign's target asset.
type Asset struct {
	// ID is the external asset identifier the campaign was created for.
	ID string
	// CampaignID is the owning campaign.
	CampaignID string
	// Purchased reports whether the vault acquired the asset.
	Purchased bool
	// Listed reports whether the asset is currently on the market.
	Listed bool
	// ListPrice is the sale price while Listed, zero otherwise.
	ListPrice uint64
	// PayoutWallet receives sale proceeds, empty until registered.
	PayoutWallet string
	// UpdatedAt is the last registry mutation time.
	UpdatedAt time.Time
}
