package events

import (
	"math/big"
	"strconv"

	"tokenforge/core/types"
)

const (
	// TypeUnlockCreated captures a new unlock record minted from migration
	// deposits.
	TypeUnlockCreated = "unlock.created"
	// TypeUnlockUpdated captures a partial claim against an unlock record.
	TypeUnlockUpdated = "unlock.updated"
	// TypeUnlockFinished captures an unlock record claimed to completion and
	// removed.
	TypeUnlockFinished = "unlock.finished"
	// TypeUnlockDeposited captures administrator funding of the engine.
	TypeUnlockDeposited = "unlock.deposited"
)

// UnlockCreated captures the entitlement split realised by an unlock.
type UnlockCreated struct {
	Account    types.Address
	ID         uint64
	FullAmount *big.Int
	Immediate  *big.Int
	Vested     *big.Int
}

// EventType satisfies the Event interface.
func (UnlockCreated) EventType() string { return TypeUnlockCreated }

// Event converts the structured payload into a broadcastable event.
func (e UnlockCreated) Event() *types.Event {
	return &types.Event{Type: TypeUnlockCreated, Attributes: map[string]string{
		"account":      e.Account.String(),
		"id":           strconv.FormatUint(e.ID, 10),
		"fullAmount":   formatAmount(e.FullAmount),
		"immediate":    formatAmount(e.Immediate),
		"vestedAmount": formatAmount(e.Vested),
	}}
}

// UnlockClaimed captures a claim against an unlock record.
type UnlockClaimed struct {
	Account  types.Address
	ID       uint64
	Paid     *big.Int
	Claimed  *big.Int
	Finished bool
}

// EventType satisfies the Event interface.
func (e UnlockClaimed) EventType() string {
	if e.Finished {
		return TypeUnlockFinished
	}
	return TypeUnlockUpdated
}

// Event converts the structured payload into a broadcastable event.
func (e UnlockClaimed) Event() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"account":       e.Account.String(),
		"id":            strconv.FormatUint(e.ID, 10),
		"paid":          formatAmount(e.Paid),
		"claimedAmount": formatAmount(e.Claimed),
	}}
}

// UnlockDeposited captures tokens deposited by the administrator to back
// outstanding unlock balances.
type UnlockDeposited struct {
	From   types.Address
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (UnlockDeposited) EventType() string { return TypeUnlockDeposited }

// Event converts the structured payload into a broadcastable event.
func (e UnlockDeposited) Event() *types.Event {
	return &types.Event{Type: TypeUnlockDeposited, Attributes: map[string]string{
		"from":   e.From.String(),
		"amount": formatAmount(e.Amount),
	}}
}
