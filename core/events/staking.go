package events

import (
	"math/big"
	"strconv"

	"tokenforge/core/types"
)

const (
	// TypeStakingStaked captures stake entering the engine.
	TypeStakingStaked = "staking.staked"
	// TypeStakingPendingCreated captures a withdrawal escrowed into a new
	// pending entry.
	TypeStakingPendingCreated = "staking.pendingCreated"
	// TypeStakingPendingUpdated captures a partial claim against a pending
	// entry.
	TypeStakingPendingUpdated = "staking.pendingUpdated"
	// TypeStakingPendingCanceled captures a pending entry folded back into
	// active stake.
	TypeStakingPendingCanceled = "staking.pendingCanceled"
	// TypeStakingClaimed captures a pending entry claimed to completion.
	TypeStakingClaimed = "staking.claimed"
	// TypeStakingRewardAdded captures new reward tokens entering the pool.
	TypeStakingRewardAdded = "staking.rewardAdded"
	// TypeStakingRewardDecreased captures reward tokens returned to the
	// administrator.
	TypeStakingRewardDecreased = "staking.rewardDecreased"
	// TypeStakingRewardReset captures the reward rate being zeroed.
	TypeStakingRewardReset = "staking.rewardReset"
	// TypeStakingRewardDurationUpdated captures a reward duration change.
	TypeStakingRewardDurationUpdated = "staking.rewardDurationUpdated"
	// TypeStakingPendingPeriodUpdated captures a release schedule change.
	TypeStakingPendingPeriodUpdated = "staking.pendingPeriodUpdated"
	// TypeStakingFeeUpdated captures a claim fee change.
	TypeStakingFeeUpdated = "staking.feeUpdated"
	// TypeStakingPaused is emitted when staking is paused.
	TypeStakingPaused = "staking.paused"
	// TypeStakingUnpaused is emitted when staking resumes.
	TypeStakingUnpaused = "staking.unpaused"
)

// StakingStaked captures a stake deposit.
type StakingStaked struct {
	Account  types.Address
	Amount   *big.Int
	NewStake *big.Int
}

// EventType satisfies the Event interface.
func (StakingStaked) EventType() string { return TypeStakingStaked }

// Event converts the structured payload into a broadcastable event.
func (e StakingStaked) Event() *types.Event {
	return &types.Event{Type: TypeStakingStaked, Attributes: map[string]string{
		"account":  e.Account.String(),
		"amount":   formatAmount(e.Amount),
		"newStake": formatAmount(e.NewStake),
	}}
}

// StakingPending captures the lifecycle transitions of a pending withdrawal.
type StakingPending struct {
	Type       string
	Account    types.Address
	ID         uint64
	FullAmount *big.Int
	Claimed    *big.Int
	Paid       *big.Int
	Fee        *big.Int
}

// EventType satisfies the Event interface.
func (e StakingPending) EventType() string { return e.Type }

// Event converts the structured payload into a broadcastable event.
func (e StakingPending) Event() *types.Event {
	attrs := map[string]string{
		"account":    e.Account.String(),
		"id":         strconv.FormatUint(e.ID, 10),
		"fullAmount": formatAmount(e.FullAmount),
	}
	if e.Claimed != nil {
		attrs["claimedAmount"] = e.Claimed.String()
	}
	if e.Paid != nil {
		attrs["paid"] = e.Paid.String()
	}
	if e.Fee != nil && e.Fee.Sign() > 0 {
		attrs["fee"] = e.Fee.String()
	}
	return &types.Event{Type: e.Type, Attributes: attrs}
}

// StakingReward captures administrative reward pool changes.
type StakingReward struct {
	Type       string
	Amount     *big.Int
	RewardRate *big.Int
}

// EventType satisfies the Event interface.
func (e StakingReward) EventType() string { return e.Type }

// Event converts the structured payload into a broadcastable event.
func (e StakingReward) Event() *types.Event {
	attrs := map[string]string{
		"rewardRate": formatAmount(e.RewardRate),
	}
	if e.Amount != nil {
		attrs["amount"] = e.Amount.String()
	}
	return &types.Event{Type: e.Type, Attributes: attrs}
}

// StakingParamUpdated captures reward duration, pending period and fee
// changes.
type StakingParamUpdated struct {
	Type   string
	Params map[string]string
}

// EventType satisfies the Event interface.
func (e StakingParamUpdated) EventType() string { return e.Type }

// Event converts the structured payload into a broadcastable event.
func (e StakingParamUpdated) Event() *types.Event {
	attrs := make(map[string]string, len(e.Params))
	for k, v := range e.Params {
		attrs[k] = v
	}
	return &types.Event{Type: e.Type, Attributes: attrs}
}

// StakingPauseToggled captures pause/unpause transitions.
type StakingPauseToggled struct {
	Paused bool
}

// EventType satisfies the Event interface.
func (e StakingPauseToggled) EventType() string {
	if e.Paused {
		return TypeStakingPaused
	}
	return TypeStakingUnpaused
}

// Event converts the structured payload into a broadcastable event.
func (e StakingPauseToggled) Event() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{}}
}
