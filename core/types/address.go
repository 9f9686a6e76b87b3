package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AddressLength is the byte length of every account identifier.
const AddressLength = 20

// Address identifies an account on the ledger.
type Address [AddressLength]byte

// ErrInvalidAddress indicates a malformed address literal.
var ErrInvalidAddress = errors.New("types: invalid address")

// ParseAddress decodes a 0x-prefixed (or bare) hex literal into an Address.
func ParseAddress(s string) (Address, error) {
	var addr Address
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}
	if len(raw) != AddressLength {
		return addr, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, AddressLength, len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

// MustParseAddress parses the literal and panics on failure. Intended for
// constants and tests.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// Bytes returns the address as a byte slice copy.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// IsZero reports whether the address is the all-zero sentinel.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String renders the address as lowercase 0x-prefixed hex.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ModuleAddress derives the well-known holding address for a named module.
// Module addresses have no private key; balances held there can only move
// through the owning engine's entry points.
func ModuleAddress(name string) Address {
	var addr Address
	digest := ethcrypto.Keccak256([]byte("module/" + strings.ToLower(strings.TrimSpace(name))))
	copy(addr[:], digest[len(digest)-AddressLength:])
	return addr
}
