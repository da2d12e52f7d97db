package observerproto

import "testing"

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrBadRequest,
		ErrBusy,
		ErrUnknownTile,
		ErrUnknownUnit,
		ErrOccupied,
		ErrNotNeighbor,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestDecodeBase(t *testing.T) {
	m, err := DecodeBase([]byte(`{"type":"PICK","origin":[0,0,3],"dir":[0,0,-1]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Type != TypePick || m.ProtocolVersion != "" {
		t.Fatalf("base: %+v", m)
	}
	if _, err := DecodeBase([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}
