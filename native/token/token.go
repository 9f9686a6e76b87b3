package token

import (
	"errors"

	"tokenforge/core/types"
)

const (
	// SymbolPrimary is the primary fixed-point token carried by the ledger.
	SymbolPrimary = "SLG"
	// SymbolRSUN is the first legacy token accepted by the migration module.
	SymbolRSUN = "RSUN"
	// SymbolINF is the second legacy token accepted by the migration module.
	SymbolINF = "INF"

	// Decimals is the number of fractional digits of the primary token.
	Decimals = 9

	// RoleAdmin grants full configuration authority, including role
	// management.
	RoleAdmin = "ROLE_ADMIN"
	// RoleMinter gates the game-channel batch mint.
	RoleMinter = "ROLE_MINTER"
)

// ModuleAddr is the ledger's own holding address. Transfer tax accrues here
// until the administrator sweeps it.
var ModuleAddr = types.ModuleAddress("token")

var (
	// ErrInsufficientBalance indicates the sender balance cannot cover the
	// transfer.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrInvalidAmount indicates a zero or otherwise nonsensical amount.
	ErrInvalidAmount = errors.New("token: invalid amount")
	// ErrInvalidConfiguration indicates malformed parameters, e.g. a zero
	// fee denominator.
	ErrInvalidConfiguration = errors.New("token: invalid configuration")
	// ErrUnauthorized indicates the caller lacks the required capability.
	ErrUnauthorized = errors.New("token: unauthorized")
)
