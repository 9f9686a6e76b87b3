package events

import (
	"math/big"
	"strconv"

	"tokenforge/core/types"
)

const (
	// TypeMintAdminIncremented captures a successful admin-channel mint.
	TypeMintAdminIncremented = "mint.adminBalanceIncremented"
	// TypeMintGameIncremented captures a successful game-channel batch mint.
	TypeMintGameIncremented = "mint.userBalancesIncremented"
	// TypeMintRateUpdated captures a per-second accrual rate change.
	TypeMintRateUpdated = "mint.ratePerSecondUpdated"
	// TypeMintHardCapUpdated captures a hard cap change.
	TypeMintHardCapUpdated = "mint.hardCapUpdated"
)

// MintAdminIncremented captures the amount credited through the admin channel.
type MintAdminIncremented struct {
	Recipient types.Address
	Amount    *big.Int
}

// EventType satisfies the Event interface.
func (MintAdminIncremented) EventType() string { return TypeMintAdminIncremented }

// Event converts the structured payload into a broadcastable event.
func (e MintAdminIncremented) Event() *types.Event {
	return &types.Event{Type: TypeMintAdminIncremented, Attributes: map[string]string{
		"recipient": e.Recipient.String(),
		"amount":    formatAmount(e.Amount),
	}}
}

// MintGameIncremented captures a batch of gameplay-reward credits.
type MintGameIncremented struct {
	Accounts  int
	ValuesSum *big.Int
}

// EventType satisfies the Event interface.
func (MintGameIncremented) EventType() string { return TypeMintGameIncremented }

// Event converts the structured payload into a broadcastable event.
func (e MintGameIncremented) Event() *types.Event {
	return &types.Event{Type: TypeMintGameIncremented, Attributes: map[string]string{
		"accounts":  strconv.Itoa(e.Accounts),
		"valuesSum": formatAmount(e.ValuesSum),
	}}
}

// MintParamUpdated captures a limiter parameter change on one channel.
type MintParamUpdated struct {
	Channel string
	HardCap bool
	Value   *big.Int
}

// EventType satisfies the Event interface.
func (e MintParamUpdated) EventType() string {
	if e.HardCap {
		return TypeMintHardCapUpdated
	}
	return TypeMintRateUpdated
}

// Event converts the structured payload into a broadcastable event.
func (e MintParamUpdated) Event() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"channel": e.Channel,
		"value":   formatAmount(e.Value),
	}}
}
