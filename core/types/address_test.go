package types

import (
	"errors"
	"strings"
	"testing"
)

func TestParseAddressRoundTrip(t *testing.T) {
	literal := "0x1234567890abcdef1234567890abcdef12345678"
	addr, err := ParseAddress(literal)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if addr.String() != literal {
		t.Fatalf("round trip = %q, want %q", addr.String(), literal)
	}
	// Bare hex without the prefix parses too.
	bare, err := ParseAddress(strings.TrimPrefix(literal, "0x"))
	if err != nil {
		t.Fatalf("parse bare: %v", err)
	}
	if bare != addr {
		t.Fatal("bare and prefixed parses differ")
	}
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	for _, literal := range []string{"", "0x12", "0xzz34567890abcdef1234567890abcdef12345678", "0x1234567890abcdef1234567890abcdef1234567890"} {
		if _, err := ParseAddress(literal); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("parse %q err = %v, want ErrInvalidAddress", literal, err)
		}
	}
}

func TestIsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Fatal("zero address not reported as zero")
	}
	addr := MustParseAddress("0x1111111111111111111111111111111111111111")
	if addr.IsZero() {
		t.Fatal("non-zero address reported as zero")
	}
}

func TestModuleAddressStableAndDistinct(t *testing.T) {
	token := ModuleAddress("token")
	if token != ModuleAddress("token") {
		t.Fatal("module address is not deterministic")
	}
	if token != ModuleAddress("  Token ") {
		t.Fatal("module address is not normalised")
	}
	if token.IsZero() {
		t.Fatal("module address is zero")
	}
	seen := map[Address]string{}
	for _, name := range []string{"token", "staking", "vesting", "migration"} {
		addr := ModuleAddress(name)
		if prior, ok := seen[addr]; ok {
			t.Fatalf("modules %s and %s collide", prior, name)
		}
		seen[addr] = name
	}
}
