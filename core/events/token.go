package events

import (
	"strconv"

	"math/big"

	"tokenforge/core/types"
)

const (
	// TypeTokenTransferred captures a completed balance transfer. Taxed
	// transfers emit a second entry for the tax leg into the ledger module
	// address.
	TypeTokenTransferred = "token.transferred"
	// TypeTokenPairAdded is emitted when an address is flagged as a
	// liquidity-pair endpoint.
	TypeTokenPairAdded = "token.pairAdded"
	// TypeTokenPairRemoved is emitted when the pair flag is cleared.
	TypeTokenPairRemoved = "token.pairRemoved"
	// TypeTokenFeeUpdated captures a transfer tax change.
	TypeTokenFeeUpdated = "token.feeUpdated"
	// TypeTokenRoleGranted captures a capability grant.
	TypeTokenRoleGranted = "token.roleGranted"
	// TypeTokenRoleRevoked captures a capability revocation.
	TypeTokenRoleRevoked = "token.roleRevoked"
	// TypeTokenRecovered captures an administrative sweep of ledger-held
	// balances.
	TypeTokenRecovered = "token.recovered"
)

// TokenTransferred captures the net movement realised by a transfer.
type TokenTransferred struct {
	Symbol string
	From   types.Address
	To     types.Address
	Amount *big.Int
	Tax    *big.Int
}

// EventType satisfies the Event interface.
func (TokenTransferred) EventType() string { return TypeTokenTransferred }

// Event converts the structured payload into a broadcastable event.
func (e TokenTransferred) Event() *types.Event {
	attrs := map[string]string{
		"symbol": normalizeSymbol(e.Symbol),
		"from":   e.From.String(),
		"to":     e.To.String(),
		"amount": formatAmount(e.Amount),
	}
	if e.Tax != nil && e.Tax.Sign() > 0 {
		attrs["tax"] = e.Tax.String()
	}
	return &types.Event{Type: TypeTokenTransferred, Attributes: attrs}
}

// TokenPairUpdated captures a pair-set toggle.
type TokenPairUpdated struct {
	Address types.Address
	IsPair  bool
}

// EventType satisfies the Event interface.
func (e TokenPairUpdated) EventType() string {
	if e.IsPair {
		return TypeTokenPairAdded
	}
	return TypeTokenPairRemoved
}

// Event converts the structured payload into a broadcastable event.
func (e TokenPairUpdated) Event() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"address": e.Address.String(),
	}}
}

// TokenFeeUpdated captures the new transfer tax parameters.
type TokenFeeUpdated struct {
	Numerator   uint64
	Denominator uint64
}

// EventType satisfies the Event interface.
func (TokenFeeUpdated) EventType() string { return TypeTokenFeeUpdated }

// Event converts the structured payload into a broadcastable event.
func (e TokenFeeUpdated) Event() *types.Event {
	return &types.Event{Type: TypeTokenFeeUpdated, Attributes: map[string]string{
		"numerator":   strconv.FormatUint(e.Numerator, 10),
		"denominator": strconv.FormatUint(e.Denominator, 10),
	}}
}

// TokenRoleUpdated captures a capability grant or revocation.
type TokenRoleUpdated struct {
	Role    string
	Account types.Address
	Granted bool
}

// EventType satisfies the Event interface.
func (e TokenRoleUpdated) EventType() string {
	if e.Granted {
		return TypeTokenRoleGranted
	}
	return TypeTokenRoleRevoked
}

// Event converts the structured payload into a broadcastable event.
func (e TokenRoleUpdated) Event() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"role":    e.Role,
		"account": e.Account.String(),
	}}
}

// TokenRecovered captures a sweep of ledger-held balances to the caller.
type TokenRecovered struct {
	Symbol string
	To     types.Address
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (TokenRecovered) EventType() string { return TypeTokenRecovered }

// Event converts the structured payload into a broadcastable event.
func (e TokenRecovered) Event() *types.Event {
	return &types.Event{Type: TypeTokenRecovered, Attributes: map[string]string{
		"symbol": normalizeSymbol(e.Symbol),
		"to":     e.To.String(),
		"amount": formatAmount(e.Amount),
	}}
}
