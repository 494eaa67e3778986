package uuid

import (
	"regexp"
	"testing"
)

func TestNewV7_SetsVersionAndVariant(t *testing.T) {
	t.Parallel()

	u := NewV7()

	// Version nibble in byte 6 must be 0b0111 (v7)
	if (u[6]>>4)&0x0f != 0x07 {
		t.Fatalf("expected version 7 nibble, got %x", (u[6]>>4)&0x0f)
	}

	// Variant in byte 7 must be RFC4122 (10xxxxxx)
	if (u[7] & 0xc0) != 0x80 {
		t.Fatalf("expected RFC4122 variant bits 10xxxxxx, got %08b", u[7])
	}
}

func TestUUID_String_Format(t *testing.T) {
	t.Parallel()

	u := NewV7()
	s := u.String()

	if len(s) != 36 {
		t.Fatalf("expected UUID string len=36, got %d (%q)", len(s), s)
	}

	re := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	if !re.MatchString(s) {
		t.Fatalf("expected canonical uuid format, got %q", s)
	}
}

func TestUUID_Hex_MatchesString(t *testing.T) {
	t.Parallel()

	u := NewV7()
	h := u.Hex()

	if len(h) != 32 {
		t.Fatalf("expected 32 hex chars, got %d (%q)", len(h), h)
	}
	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(h) {
		t.Fatalf("expected lowercase hex, got %q", h)
	}

	want := u.String()
	dashless := want[0:8] + want[9:13] + want[14:18] + want[19:23] + want[24:36]
	if h != dashless {
		t.Errorf("Hex %q does not match dashless String %q", h, dashless)
	}
}

func TestUUID_ShortHex(t *testing.T) {
	t.Parallel()

	u := NewV7()
	if got := u.ShortHex(8); len(got) != 8 {
		t.Errorf("expected 8 chars, got %q", got)
	}
	if got := u.ShortHex(64); got != u.Hex() {
		t.Errorf("expected full hex when n exceeds length, got %q", got)
	}
}
