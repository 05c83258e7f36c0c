// Package cursor encodes journal pagination state as opaque page
// tokens. A token pins the sequence number at a page edge, the travel
// direction, and a hash of the filter it was minted under so a token
// cannot be replayed against a different query.
package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Direction is the travel direction relative to the pinned sequence.
type Direction string

const (
	// DirectionForward selects events with seq greater than the cursor.
	DirectionForward Direction = "fwd"
	// DirectionBackward selects events with seq less than the cursor.
	DirectionBackward Direction = "bwd"
)

func (d Direction) valid() bool {
	return d == DirectionForward || d == DirectionBackward
}

// Cursor is the decoded state carried inside a page token.
type Cursor struct {
	// Seq is the journal sequence number at the page edge.
	Seq uint64 `json:"seq"`
	// Dir is the travel direction away from Seq.
	Dir Direction `json:"dir"`
	// Reverse flips the scan order while fetching so a previous page
	// returns the rows nearest the cursor instead of the far edge.
	Reverse bool `json:"rev,omitempty"`
	// FilterHash ties the token to the filter it was minted under.
	FilterHash string `json:"filter_hash,omitempty"`
}

// Encode serializes the cursor into an opaque URL-safe token.
func Encode(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode parses a page token back into a cursor, rejecting malformed
// tokens and unknown directions.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("empty page token")
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode page token: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}
	if !c.Dir.valid() {
		return Cursor{}, fmt.Errorf("invalid cursor direction: %q", c.Dir)
	}
	return c, nil
}

// HashFilter collapses a filter expression into a short stable hash.
// An empty filter hashes to the empty string.
func HashFilter(filter string) string {
	if filter == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(filter))
	return hex.EncodeToString(sum[:8])
}

// ValidateFilterHash rejects a cursor minted under a different filter.
func ValidateFilterHash(c Cursor, currentFilter string) error {
	if c.FilterHash != HashFilter(currentFilter) {
		return fmt.Errorf("filter changed since cursor was created")
	}
	return nil
}

// NewNextPageCursor pins the last sequence of the current page. With a
// descending listing the next page travels backward through the
// journal, otherwise forward.
func NewNextPageCursor(lastSeq uint64, descending bool, filter string) Cursor {
	return Cursor{
		Seq:        lastSeq,
		Dir:        pick(descending, DirectionBackward, DirectionForward),
		FilterHash: HashFilter(filter),
	}
}

// NewPrevPageCursor pins the first sequence of the current page and
// travels the opposite way, with Reverse set so the fetch keeps the
// rows nearest the cursor.
func NewPrevPageCursor(firstSeq uint64, descending bool, filter string) Cursor {
	return Cursor{
		Seq:        firstSeq,
		Dir:        pick(descending, DirectionForward, DirectionBackward),
		Reverse:    true,
		FilterHash: HashFilter(filter),
	}
}

func pick(descending bool, whenDesc, otherwise Direction) Direction {
	if descending {
		return whenDesc
	}
	return otherwise
}
