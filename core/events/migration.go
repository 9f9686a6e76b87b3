package events

import (
	"math/big"

	"tokenforge/core/types"
)

const (
	// TypeMigrationRSUNDeposited captures a one-way RSUN deposit.
	TypeMigrationRSUNDeposited = "migration.rsunDeposited"
	// TypeMigrationINFDeposited captures a one-way INF deposit.
	TypeMigrationINFDeposited = "migration.infDeposited"
)

// MigrationDeposited captures a legacy token deposit and the resulting
// running totals.
type MigrationDeposited struct {
	Symbol   string
	Account  types.Address
	Amount   *big.Int
	NewTotal *big.Int
}

// EventType satisfies the Event interface.
func (e MigrationDeposited) EventType() string {
	if normalizeSymbol(e.Symbol) == "INF" {
		return TypeMigrationINFDeposited
	}
	return TypeMigrationRSUNDeposited
}

// Event converts the structured payload into a broadcastable event.
func (e MigrationDeposited) Event() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"symbol":   normalizeSymbol(e.Symbol),
		"account":  e.Account.String(),
		"amount":   formatAmount(e.Amount),
		"newTotal": formatAmount(e.NewTotal),
	}}
}
