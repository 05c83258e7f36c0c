// Package storage defines the persistence boundaries for campaigns,
// proposals, the event journal, and the asset registry. Implementations
// live in subpackages (sqlite for relational state, bbolt for the asset
// registry).
package storage
