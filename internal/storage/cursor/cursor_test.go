package cursor

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := Cursor{
		Seq:        42,
		Dir:        DirectionForward,
		Reverse:    true,
		FilterHash: HashFilter(`type = "campaign.contributed"`),
	}

	token, err := Encode(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != original {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "!!!"},
		{"not json", "bm90IGpzb24="},
		{"missing direction", "eyJzZXEiOjF9"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.token); err == nil {
				t.Fatalf("expected error for token %q", tc.token)
			}
		})
	}
}

func TestValidateFilterHash(t *testing.T) {
	c := NewNextPageCursor(10, false, `actor_id = "alice"`)
	if err := ValidateFilterHash(c, `actor_id = "alice"`); err != nil {
		t.Fatalf("expected matching filter to validate: %v", err)
	}
	if err := ValidateFilterHash(c, `actor_id = "bob"`); err == nil {
		t.Fatal("expected changed filter to be rejected")
	}
}

func TestPageCursorDirections(t *testing.T) {
	next := NewNextPageCursor(7, false, "")
	if next.Dir != DirectionForward || next.Reverse {
		t.Fatalf("unexpected next cursor: %+v", next)
	}
	nextDesc := NewNextPageCursor(7, true, "")
	if nextDesc.Dir != DirectionBackward {
		t.Fatalf("unexpected descending next cursor: %+v", nextDesc)
	}
	prev := NewPrevPageCursor(7, false, "")
	if prev.Dir != DirectionBackward || !prev.Reverse {
		t.Fatalf("unexpected prev cursor: %+v", prev)
	}
	prevDesc := NewPrevPageCursor(7, true, "")
	if prevDesc.Dir != DirectionForward || !prevDesc.Reverse {
		t.Fatalf("unexpected descending prev cursor: %+v", prevDesc)
	}
}
