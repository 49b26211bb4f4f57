package detect

import (
	"encoding/base64"
	"testing"
)

func TestDecodePayload_PlainText(t *testing.T) {
	payload := DecodePayload([]byte("withdraw@01"))
	if payload != "withdraw@01" {
		t.Errorf("Expected plain payload unchanged, got %q", payload)
	}
}

func TestDecodePayload_Base64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("withdraw@01"))
	payload := DecodePayload([]byte(encoded))
	if payload != "withdraw@01" {
		t.Errorf("Expected decoded payload withdraw@01, got %q", payload)
	}
}

func TestDecodePayload_PlainTextBase64Shape(t *testing.T) {
	// Plain-text payloads whose length is a multiple of 4 and that
	// only use base64 alphabet characters must stay untouched.
	cases := []string{"withdraw", "setOwnerMint", "burnFrom4444"}
	for _, c := range cases {
		if got := DecodePayload([]byte(c)); got != c {
			t.Errorf("DecodePayload(%q) = %q, want payload unchanged", c, got)
		}
	}
}

func TestDecodePayload_BinaryDecodeRejected(t *testing.T) {
	// Base64 that decodes to non-text bytes is kept as the raw string.
	encoded := base64.StdEncoding.EncodeToString([]byte{0x00, 0xff, 0x10, 0x80})
	if got := DecodePayload([]byte(encoded)); got != encoded {
		t.Errorf("Expected raw string for binary decode, got %q", got)
	}
}

func TestDecodePayload_Empty(t *testing.T) {
	if DecodePayload(nil) != "" {
		t.Error("Expected empty payload for nil data")
	}
}

func TestFunctionName(t *testing.T) {
	cases := []struct {
		payload string
		want    string
	}{
		{"withdraw@01@02", "withdraw"},
		{"swap", "swap"},
		{"", ""},
	}
	for _, c := range cases {
		if got := FunctionName(c.payload); got != c.want {
			t.Errorf("FunctionName(%q) = %q, want %q", c.payload, got, c.want)
		}
	}
}

func TestSegments(t *testing.T) {
	segs := Segments("flashloanborrowswap@arbitrage@pool")
	if len(segs) != 3 {
		t.Errorf("Expected 3 segments, got %d", len(segs))
	}
	if Segments("") != nil {
		t.Error("Expected nil segments for empty payload")
	}
}

func TestNormalizeName(t *testing.T) {
	if normalizeName("Set_Owner") != "setowner" {
		t.Errorf("Expected setowner, got %q", normalizeName("Set_Owner"))
	}
}
