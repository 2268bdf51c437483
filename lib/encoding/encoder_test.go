package encoding

import (
	"errors"
	"strings"
	"testing"
)

type snapshot struct {
	Filters map[string]any `msgpack:"f"`
	Page    int            `msgpack:"p"`
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc := NewEncoder([]byte("test-key"))

	in := snapshot{
		Filters: map[string]any{"skill": "design", "available": true},
		Page:    3,
	}

	token, err := enc.Encode(in)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(token, ".") {
		t.Fatalf("token %q should contain a signature separator", token)
	}

	var out snapshot
	if err := enc.Decode(token, &out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.Page != 3 {
		t.Errorf("Page = %d, want 3", out.Page)
	}
	if out.Filters["skill"] != "design" {
		t.Errorf("Filters[skill] = %v, want design", out.Filters["skill"])
	}
	if out.Filters["available"] != true {
		t.Errorf("Filters[available] = %v, want true", out.Filters["available"])
	}
}

func TestDecodeRejectsTampering(t *testing.T) {
	enc := NewEncoder([]byte("test-key"))

	token, err := enc.Encode(snapshot{Page: 1})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	payload, sig, _ := strings.Cut(token, ".")

	other, err := enc.Encode(snapshot{Page: 99})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	otherPayload, _, _ := strings.Cut(other, ".")

	var out snapshot
	if err := enc.Decode(otherPayload+"."+sig, &out); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("swapped payload: error = %v, want ErrSignatureInvalid", err)
	}
	if err := enc.Decode(payload, &out); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("missing signature: error = %v, want ErrInvalidFormat", err)
	}
	if err := enc.Decode("!!!.!!!", &out); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("garbage: error = %v, want ErrInvalidFormat", err)
	}
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	token, err := NewEncoder([]byte("key-a")).Encode(snapshot{Page: 2})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var out snapshot
	err = NewEncoder([]byte("key-b")).Decode(token, &out)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("cross-key decode: error = %v, want ErrSignatureInvalid", err)
	}
}

func TestShortKeysAreStretched(t *testing.T) {
	enc := NewEncoder([]byte("k"))
	token, err := enc.Encode(snapshot{Page: 7})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	var out snapshot
	if err := enc.Decode(token, &out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.Page != 7 {
		t.Errorf("Page = %d, want 7", out.Page)
	}
}
